package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// feedWarningMessage попадает в успешный ответ, если запись сохранена,
// но событие в ленту не ушло.
const feedWarningMessage = "shipment saved but activity feed publish failed"

// errBadBody — тело запроса не разобрать; наружу уходит как validation.
var errBadBody = errors.New("request body is not a valid json object")

// errorBody — типизированный ответ об ошибке. Внутренний текст ошибок
// хранилища наружу не отдаётся.
type errorBody struct {
	Status  string `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError отображает доменные ошибки на коды статусов и типы.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		status  int
		kind    string
		message string
	)

	switch {
	case errors.Is(err, domain.ErrMalformedAuthHeader):
		status, kind, message = http.StatusUnauthorized, "malformed_authorization", err.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		status, kind, message = http.StatusUnauthorized, "invalid_token", domain.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrMissingAuthorization):
		status, kind, message = http.StatusBadRequest, "missing_authorization", err.Error()
	case errors.Is(err, domain.ErrShipmentNotFound):
		status, kind, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, domain.ErrUserIDRequired):
		status, kind, message = http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, errBadBody):
		status, kind, message = http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, domain.ErrFeedUnavailable):
		status, kind, message = http.StatusInternalServerError, "feed_unavailable", domain.ErrFeedUnavailable.Error()
	case errors.Is(err, domain.ErrStorage):
		status, kind, message = http.StatusInternalServerError, "storage", domain.ErrStorage.Error()
	default:
		s.logger.WithError(err).Error("unclassified error on http surface")
		status, kind, message = http.StatusInternalServerError, "storage", domain.ErrStorage.Error()
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("kind", kind).Error("request failed")
	}

	s.writeJSON(w, status, errorBody{Status: "error", Kind: kind, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}

// shipmentBody сериализует посылку, добавляя warning при сбое ленты.
func shipmentBody(shipment domain.Shipment, feedWarning bool) any {
	if !feedWarning {
		return shipment
	}

	raw, err := json.Marshal(shipment)
	if err != nil {
		return shipment
	}
	body := make(map[string]any)
	if err := json.Unmarshal(raw, &body); err != nil {
		return shipment
	}
	body["warning"] = feedWarningMessage
	return body
}
