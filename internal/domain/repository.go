package domain

// ShipmentRepository описывает требования к хранилищу посылок.
type ShipmentRepository interface {
	// Create сохраняет новую посылку и возвращает запись с назначенным ID.
	Create(shipment Shipment) (Shipment, error)
	// Get возвращает посылку по идентификатору или ErrShipmentNotFound.
	Get(id int64) (Shipment, error)
	// List возвращает все посылки, упорядоченные по ID по возрастанию.
	List() ([]Shipment, error)
	// Update применяет частичное обновление и возвращает запись после него.
	// Возвращает ErrShipmentNotFound, если записи с таким ID нет.
	Update(id int64, patch ShipmentPatch) (Shipment, error)
}
