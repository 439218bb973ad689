package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// shipmentRepositoryInMemory — простая in-memory реализация ShipmentRepository.
type shipmentRepositoryInMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Shipment
}

// NewShipmentRepository возвращает in-memory репозиторий для локальной
// разработки и тестов. Идентификаторы назначаются с единицы по возрастанию.
func NewShipmentRepository() domain.ShipmentRepository {
	return &shipmentRepositoryInMemory{
		nextID: 1,
		items:  make(map[int64]domain.Shipment),
	}
}

// Create назначает ID и сохраняет копию записи.
func (r *shipmentRepositoryInMemory) Create(shipment domain.Shipment) (domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shipment.ID = r.nextID
	r.nextID++
	r.items[shipment.ID] = shipment
	return shipment, nil
}

// Get возвращает посылку или ErrShipmentNotFound.
func (r *shipmentRepositoryInMemory) Get(id int64) (domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shipment, ok := r.items[id]
	if !ok {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}
	return shipment, nil
}

// List возвращает все посылки, упорядоченные по ID по возрастанию.
func (r *shipmentRepositoryInMemory) List() ([]domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Shipment, 0, len(r.items))
	for _, shipment := range r.items {
		result = append(result, shipment)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// Update накладывает патч на существующую запись и возвращает результат.
func (r *shipmentRepositoryInMemory) Update(id int64, patch domain.ShipmentPatch) (domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}

	updated := patch.Apply(current)
	r.items[id] = updated
	return updated, nil
}

var _ domain.ShipmentRepository = (*shipmentRepositoryInMemory)(nil)
