package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

// TopicActivityEvents — топик, в который уходят события активности, когда
// вместо hosted feed-сервиса используется собственный Kafka-конвейер.
const TopicActivityEvents = "shiptrack.activity.events"

// KafkaPublisher публикует события активности в Kafka. Ключ сообщения —
// user_id, так что лента одного пользователя остаётся упорядоченной в
// пределах партиции.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewKafkaPublisher создаёт publisher поверх идемпотентного sync producer.
func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		logger:   log.WithField("component", "feed-kafka"),
	}, nil
}

// Publish сериализует событие и отправляет его в топик активности.
func (p *KafkaPublisher) Publish(userID string, event domain.ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     TopicActivityEvents,
		Key:       sarama.StringEncoder(userID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("user_id", userID).Error("failed to send activity to kafka")
		return fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}

	p.logger.WithFields(log.Fields{
		"user_id":   userID,
		"partition": partition,
		"offset":    offset,
	}).Debug("activity sent to kafka")

	return nil
}

// Close закрывает producer.
func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var _ domain.FeedPublisher = (*KafkaPublisher)(nil)
