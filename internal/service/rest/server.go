package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	"github.com/vladislavdragonenkov/shiptrack/internal/metrics"
	shipmentsvc "github.com/vladislavdragonenkov/shiptrack/internal/service/shipment"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// Server — HTTP-поверхность API: маршруты, коды статусов и типизированные
// ошибки поверх оркестратора.
type Server struct {
	svc     *shipmentsvc.Service
	tokens  domain.TokenService
	metrics *metrics.APIMetrics
	logger  *log.Entry
}

// NewServer конструирует HTTP-поверхность.
func NewServer(svc *shipmentsvc.Service, tokens domain.TokenService, apiMetrics *metrics.APIMetrics, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Server{
		svc:     svc,
		tokens:  tokens,
		metrics: apiMetrics,
		logger:  logger,
	}
}

// Handler собирает маршруты и навешивает middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tokens", s.handleIssueToken)
	mux.HandleFunc("GET /shipments", s.handleListShipments)
	mux.HandleFunc("POST /shipments", s.handleCreateShipment)
	mux.HandleFunc("GET /shipments/{id}", s.handleGetShipment)
	mux.HandleFunc("PUT /shipments/{id}", s.handleUpdateShipment)

	return s.recoverPanics(s.cors(s.instrument(mux)))
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, domain.ErrUserIDRequired)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, domain.ErrUserIDRequired)
		return
	}

	signed, err := s.tokens.Issue(req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

func (s *Server) handleListShipments(w http.ResponseWriter, _ *http.Request) {
	shipments, err := s.svc.ListShipments()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, shipments)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	shipment, err := s.svc.GetShipment(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	env, err := s.parseEnvelope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.CreateShipment(env)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, shipmentBody(result.Shipment, result.FeedWarning))
}

func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	env, err := s.parseEnvelope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.UpdateShipment(id, env)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body := make(map[string]any, len(result.Applied)+1)
	for k, v := range result.Applied {
		body[k] = v
	}
	if result.FeedWarning {
		body["warning"] = feedWarningMessage
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) parseEnvelope(r *http.Request) (shipmentsvc.Envelope, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return shipmentsvc.Envelope{}, errBadBody
	}
	env, err := shipmentsvc.ParseEnvelope(body)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedAuthHeader) {
			return shipmentsvc.Envelope{}, err
		}
		return shipmentsvc.Envelope{}, errBadBody
	}
	return env, nil
}

// shipmentID разбирает {id} из пути. Нечисловой id неотличим от
// несуществующего маршрута — отвечаем 404, как это делала исходная система.
func shipmentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrShipmentNotFound
	}
	return id, nil
}
