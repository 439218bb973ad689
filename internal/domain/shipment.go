package domain

// Shipment — отслеживаемая доменная сущность: посылка с маршрутом и статусом.
// Все поля, кроме ID, — свободный текст без валидации формата: сервис
// сознательно сохраняет то, что прислал клиент.
type Shipment struct {
	// ID назначается хранилищем при создании и далее неизменен.
	ID int64 `json:"id"`
	// Item — название отправляемого предмета.
	Item string `json:"item"`
	// Description — произвольное описание.
	Description string `json:"description"`
	// Status — свободная метка вида "pending"/"in-transit"/"delivered".
	Status string `json:"status"`
	// TrackingNumber опционален; в хранилище допускает NULL.
	TrackingNumber string `json:"tracking_number"`
	// CurrentLocation — текущее местоположение посылки.
	CurrentLocation string `json:"current_location"`
	// Source — пункт отправления.
	Source string `json:"source"`
	// Destination — пункт назначения.
	Destination string `json:"destination"`
	// Arrival — дата или ETA прибытия, хранится как непрозрачный текст.
	Arrival string `json:"arrival"`
}

// ShipmentPatch — частичное обновление: применяются только non-nil поля.
type ShipmentPatch struct {
	Item            *string `json:"item"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	TrackingNumber  *string `json:"tracking_number"`
	CurrentLocation *string `json:"current_location"`
	Source          *string `json:"source"`
	Destination     *string `json:"destination"`
	Arrival         *string `json:"arrival"`
}

// IsEmpty сообщает, что патч не затрагивает ни одного поля.
func (p ShipmentPatch) IsEmpty() bool {
	return p.Item == nil && p.Description == nil && p.Status == nil &&
		p.TrackingNumber == nil && p.CurrentLocation == nil &&
		p.Source == nil && p.Destination == nil && p.Arrival == nil
}

// Apply накладывает патч на копию посылки и возвращает результат.
func (p ShipmentPatch) Apply(s Shipment) Shipment {
	if p.Item != nil {
		s.Item = *p.Item
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.TrackingNumber != nil {
		s.TrackingNumber = *p.TrackingNumber
	}
	if p.CurrentLocation != nil {
		s.CurrentLocation = *p.CurrentLocation
	}
	if p.Source != nil {
		s.Source = *p.Source
	}
	if p.Destination != nil {
		s.Destination = *p.Destination
	}
	if p.Arrival != nil {
		s.Arrival = *p.Arrival
	}
	return s
}
