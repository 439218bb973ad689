package shipment

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// envelopeHeadersKey — служебный ключ тела запроса с блоком заголовков.
const envelopeHeadersKey = "headers"

// Envelope — конверт операций создания/обновления: тело запроса несёт
// встроенный блок headers (с Authorization) плюс доменные поля посылки.
type Envelope struct {
	// Headers — разобранный блок headers; nil, если ключа headers не было.
	Headers map[string]string
	// Fields — остальные ключи тела в сыром виде.
	Fields map[string]json.RawMessage
}

// ParseEnvelope разбирает тело запроса. Не-объект — ошибка; блок headers
// с нестроковыми значениями считается битой авторизацией.
func ParseEnvelope(body []byte) (Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, fmt.Errorf("decode request body: %w", err)
	}

	env := Envelope{Fields: raw}

	headersRaw, ok := raw[envelopeHeadersKey]
	if !ok {
		return env, nil
	}
	delete(raw, envelopeHeadersKey)

	headers := make(map[string]string)
	if err := json.Unmarshal(headersRaw, &headers); err != nil {
		// Блок headers есть, но его не разобрать — авторизация битая.
		return Envelope{}, domain.ErrMalformedAuthHeader
	}
	env.Headers = headers

	return env, nil
}

// Authorization возвращает значение заголовка и признак его наличия.
func (e Envelope) Authorization() (string, bool) {
	if e.Headers == nil {
		return "", false
	}
	value, ok := e.Headers["Authorization"]
	return value, ok
}

// DomainJSON собирает из конверта JSON только с доменными полями.
func (e Envelope) DomainJSON() ([]byte, error) {
	return json.Marshal(e.Fields)
}

// DomainFields декодирует доменные поля конверта в произвольные значения.
func (e Envelope) DomainFields() (map[string]any, error) {
	fields := make(map[string]any, len(e.Fields))
	for key, raw := range e.Fields {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", key, err)
		}
		fields[key] = value
	}
	return fields, nil
}
