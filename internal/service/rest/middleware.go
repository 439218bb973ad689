package rest

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// statusRecorder запоминает код ответа для логов и метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// recoverPanics гарантирует, что сбой обработчика никогда не роняет процесс:
// паника превращается в типизированный 500.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithFields(log.Fields{
					"panic":  rec,
					"method": r.Method,
					"path":   r.URL.Path,
				}).Error("panic in http handler")
				s.writeJSON(w, http.StatusInternalServerError, errorBody{
					Status:  "error",
					Kind:    "storage",
					Message: domain.ErrStorage.Error(),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// cors выставляет разрешающие заголовки: исходная система фронтится
// браузерным SPA с любого origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Access-Control-Allow-Credentials")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument пишет лог и метрики по завершённому запросу.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		route := r.URL.Path

		if s.metrics != nil {
			s.metrics.RecordRequest(r.Method, route, recorder.status, duration)
		}
		s.logger.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      recorder.status,
			"duration_ms": duration.Milliseconds(),
		}).Info("request handled")
	})
}
