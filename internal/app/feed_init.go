package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	"github.com/vladislavdragonenkov/shiptrack/internal/feed"
)

// initFeedPublisher выбирает транспорт ленты активности.
// Kafka имеет приоритет над HTTP-лентой; без настроек включается mock.
// Ненулевой *KafkaPublisher нужно закрыть при остановке приложения.
func initFeedPublisher(cfg Config, logger *log.Entry) (domain.FeedPublisher, *feed.KafkaPublisher, error) {
	switch {
	case len(cfg.FeedKafkaBrokers) > 0:
		publisher, err := feed.NewKafkaPublisher(cfg.FeedKafkaBrokers)
		if err != nil {
			return nil, nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		logger.WithField("brokers", cfg.FeedKafkaBrokers).Info("kafka publisher initialized")
		return publisher, publisher, nil
	case cfg.FeedAPIKey != "" && cfg.FeedAPISecret != "" && cfg.FeedAPIURL != "":
		client, err := feed.NewStreamClient(cfg.FeedAPIURL, cfg.FeedAPIKey, cfg.FeedAPISecret, logger.WithField("component", "feed"))
		if err != nil {
			return nil, nil, fmt.Errorf("create feed client: %w", err)
		}
		logger.WithField("url", cfg.FeedAPIURL).Info("feed client initialized")
		return client, nil, nil
	default:
		// NOTE: Using mock publisher for development/demo purposes
		// In production, configure the feed API or Kafka brokers
		logger.Warn("лента активности не настроена, используем mock publisher")
		return feed.NewMockPublisher(), nil, nil
	}
}
