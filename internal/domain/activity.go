package domain

import "encoding/json"

// VerbShip — единственный глагол активности: и создание, и обновление
// посылки публикуются в ленту как "ship".
const VerbShip = "ship"

// ActivityEvent — запись для ленты активности пользователя. Живёт только в
// рамках запроса; персистентность — забота внешнего сервиса ленты.
type ActivityEvent struct {
	// Actor — user_id, извлечённый из токена.
	Actor string
	// Verb — тип действия, всегда VerbShip.
	Verb string
	// Object — ссылка на объект активности; настраивается конфигурацией.
	Object string
	// ForeignID позволяет сервису ленты дедуплицировать событие.
	ForeignID string
	// Extra — плоские дополнительные поля: срез полей посылки при создании
	// либо сырые поля обновления (возможно, с произвольными ключами клиента).
	Extra map[string]any
}

// NewShipmentActivity собирает событие создания: поля посылки копируются в
// плоский payload. ID и current_location в ленту не попадают.
func NewShipmentActivity(actor, object string, s Shipment) ActivityEvent {
	return ActivityEvent{
		Actor:  actor,
		Verb:   VerbShip,
		Object: object,
		Extra: map[string]any{
			"item":            s.Item,
			"description":     s.Description,
			"status":          s.Status,
			"tracking_number": s.TrackingNumber,
			"source":          s.Source,
			"destination":     s.Destination,
			"arrival":         s.Arrival,
		},
	}
}

// NewUpdateActivity собирает событие обновления поверх переданных полей.
func NewUpdateActivity(actor, object string, fields map[string]any) ActivityEvent {
	extra := make(map[string]any, len(fields))
	for k, v := range fields {
		extra[k] = v
	}
	return ActivityEvent{
		Actor:  actor,
		Verb:   VerbShip,
		Object: object,
		Extra:  extra,
	}
}

// MarshalJSON выдаёт плоский документ: actor/verb/object на верхнем уровне,
// рядом с ними — все ключи Extra.
func (e ActivityEvent) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(e.Extra)+4)
	for k, v := range e.Extra {
		doc[k] = v
	}
	doc["actor"] = e.Actor
	doc["verb"] = e.Verb
	doc["object"] = e.Object
	if e.ForeignID != "" {
		doc["foreign_id"] = e.ForeignID
	}
	return json.Marshal(doc)
}
