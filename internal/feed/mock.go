package feed

import (
	"sync"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// PublishedActivity — одно записанное обращение к mock-публикатору.
type PublishedActivity struct {
	UserID string
	Event  domain.ActivityEvent
}

// MockPublisher — конфигурируемая заглушка FeedPublisher для тестов и
// локального запуска без настроенного feed-сервиса.
type MockPublisher struct {
	mu         sync.Mutex
	publishErr error
	published  []PublishedActivity
}

// NewMockPublisher возвращает mock с успешным сценарием по умолчанию.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// FailWith заставляет последующие Publish возвращать err (nil — снова успех).
func (m *MockPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// Publish записывает событие либо возвращает настроенную ошибку.
func (m *MockPublisher) Publish(userID string, event domain.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, PublishedActivity{UserID: userID, Event: event})
	return nil
}

// Published возвращает копию списка записанных публикаций.
func (m *MockPublisher) Published() []PublishedActivity {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]PublishedActivity, len(m.published))
	copy(result, m.published)
	return result
}

var _ domain.FeedPublisher = (*MockPublisher)(nil)
