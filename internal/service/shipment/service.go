package shipment

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	"github.com/vladislavdragonenkov/shiptrack/internal/metrics"
	"github.com/vladislavdragonenkov/shiptrack/internal/token"
)

// defaultActivityObject — ссылка object в событии активности; исходная
// система шлёт фиксированный плейсхолдер.
const defaultActivityObject = "Place:42"

// allowedActivityKeys — ключи обновления, попадающие в ленту в режиме
// allowlist. Совпадают с доменными полями посылки.
var allowedActivityKeys = map[string]bool{
	"item":             true,
	"description":      true,
	"status":           true,
	"tracking_number":  true,
	"current_location": true,
	"source":           true,
	"destination":      true,
	"arrival":          true,
}

// Options — настройки оркестратора.
type Options struct {
	// ActivityObject подменяет ссылку object в событиях; пустая строка —
	// значение по умолчанию.
	ActivityObject string
	// AllowlistOnly включает фильтрацию события обновления по известным
	// полям посылки вместо пропуска произвольных ключей клиента.
	AllowlistOnly bool
	// Metrics опциональны; nil отключает учёт.
	Metrics *metrics.APIMetrics
}

// Service — оркестратор: проверяет конверт, извлекает и декодирует токен,
// выполняет мутацию репозитория и после её коммита публикует событие в ленту.
type Service struct {
	repo      domain.ShipmentRepository
	tokens    domain.TokenService
	feed      domain.FeedPublisher
	object    string
	allowlist bool
	metrics   *metrics.APIMetrics
	logger    *log.Entry
}

// NewService конструирует сервис с зависимостями.
func NewService(
	repo domain.ShipmentRepository,
	tokens domain.TokenService,
	feed domain.FeedPublisher,
	opts Options,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "shipment-service")
	}
	object := opts.ActivityObject
	if object == "" {
		object = defaultActivityObject
	}
	return &Service{
		repo:      repo,
		tokens:    tokens,
		feed:      feed,
		object:    object,
		allowlist: opts.AllowlistOnly,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// CreateResult — итог создания: запись и признак того, что посылка
// сохранена, но событие в ленту не ушло.
type CreateResult struct {
	Shipment    domain.Shipment
	FeedWarning bool
}

// UpdateResult — итог обновления: применённые поля и тот же признак.
type UpdateResult struct {
	Applied     map[string]any
	FeedWarning bool
}

// CreateShipment проводит создание посылки: авторизация, запись, публикация.
// До успешного декодирования токена хранилище не трогается.
func (s *Service) CreateShipment(env Envelope) (CreateResult, error) {
	identity, err := s.authorize(env)
	if err != nil {
		return CreateResult{}, err
	}

	payload, err := env.DomainJSON()
	if err != nil {
		return CreateResult{}, fmt.Errorf("encode shipment fields: %w", err)
	}
	var shipment domain.Shipment
	if err := json.Unmarshal(payload, &shipment); err != nil {
		return CreateResult{}, fmt.Errorf("decode shipment fields: %w", err)
	}
	shipment.ID = 0

	created, err := s.repo.Create(shipment)
	if err != nil {
		return CreateResult{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordShipmentCreated()
	}

	event := domain.NewShipmentActivity(identity.UserID, s.object, created)
	event.ForeignID = uuid.NewString()

	warning := s.publish(identity.UserID, created.ID, event)
	return CreateResult{Shipment: created, FeedWarning: warning}, nil
}

// GetShipment возвращает посылку по идентификатору. Аутентификация на
// чтение не требуется — поведение исходной системы сохранено.
func (s *Service) GetShipment(id int64) (domain.Shipment, error) {
	return s.repo.Get(id)
}

// ListShipments возвращает все посылки по возрастанию ID.
func (s *Service) ListShipments() ([]domain.Shipment, error) {
	return s.repo.List()
}

// UpdateShipment проводит частичное обновление. Полное отсутствие ключа
// Authorization — отдельная ошибка ErrMissingAuthorization; это
// сознательная замена тихого no-op исходной системы.
func (s *Service) UpdateShipment(id int64, env Envelope) (UpdateResult, error) {
	if _, ok := env.Authorization(); !ok {
		return UpdateResult{}, domain.ErrMissingAuthorization
	}

	identity, err := s.authorize(env)
	if err != nil {
		return UpdateResult{}, err
	}

	payload, err := env.DomainJSON()
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode update fields: %w", err)
	}
	var patch domain.ShipmentPatch
	if err := json.Unmarshal(payload, &patch); err != nil {
		return UpdateResult{}, fmt.Errorf("decode update fields: %w", err)
	}

	if _, err := s.repo.Update(id, patch); err != nil {
		return UpdateResult{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordShipmentUpdated()
	}

	fields, err := env.DomainFields()
	if err != nil {
		return UpdateResult{}, fmt.Errorf("decode update fields: %w", err)
	}

	eventFields := fields
	if s.allowlist {
		eventFields = make(map[string]any, len(fields))
		for key, value := range fields {
			if allowedActivityKeys[key] {
				eventFields[key] = value
			}
		}
	} else {
		for key := range fields {
			if !allowedActivityKeys[key] {
				s.logger.WithFields(log.Fields{
					"shipment_id": id,
					"key":         key,
				}).Debug("passing caller-supplied key into activity")
			}
		}
	}

	event := domain.NewUpdateActivity(identity.UserID, s.object, eventFields)
	event.ForeignID = uuid.NewString()

	warning := s.publish(identity.UserID, id, event)
	return UpdateResult{Applied: fields, FeedWarning: warning}, nil
}

// authorize извлекает Bearer-токен из конверта и декодирует его.
// Отсутствие заголовка здесь — битая авторизация; случай "ключа нет вообще"
// обновление проверяет раньше и отдельно.
func (s *Service) authorize(env Envelope) (domain.Identity, error) {
	header, ok := env.Authorization()
	if !ok {
		return domain.Identity{}, domain.ErrMalformedAuthHeader
	}

	raw, err := token.StripBearer(header)
	if err != nil {
		return domain.Identity{}, err
	}

	identity, err := s.tokens.Decode(raw)
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

// publish шлёт событие в ленту после коммита. Ошибка не откатывает запись:
// логируем, считаем и возвращаем признак предупреждения.
func (s *Service) publish(userID string, shipmentID int64, event domain.ActivityEvent) bool {
	if err := s.feed.Publish(userID, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"user_id":     userID,
			"shipment_id": shipmentID,
		}).Error("activity publish failed after commit")
		if s.metrics != nil {
			s.metrics.RecordActivityFailed()
		}
		return true
	}

	if s.metrics != nil {
		s.metrics.RecordActivityPublished()
	}
	return false
}
