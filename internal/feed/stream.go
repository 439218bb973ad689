package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

const (
	defaultRequestTimeout = 5 * time.Second

	// streamGroup — тип персональной ленты: события кладутся в (user, user_id).
	streamGroup = "user"
)

// StreamClient публикует события в персональные ленты внешнего feed-сервиса
// через его REST API. Запросы подписываются серверным JWT, выписанным из
// API-секрета, плюс api_key в query — схема hosted-фидов вроде Stream.
type StreamClient struct {
	baseURL    string
	apiKey     string
	authHeader string
	httpClient *http.Client
	logger     *log.Entry
}

// NewStreamClient создаёт клиент. baseURL — корень API feed-сервиса,
// apiKey/apiSecret — ключи приложения из конфигурации процесса.
func NewStreamClient(baseURL, apiKey, apiSecret string, logger *log.Entry) (*StreamClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("feed base url is required")
	}
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("feed api key and secret are required")
	}
	if logger == nil {
		logger = log.WithField("component", "feed-stream")
	}

	// Серверный токен с полным доступом к фидам; живёт столько же, сколько процесс.
	serverToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"resource": "*",
		"action":   "*",
		"feed_id":  "*",
	}).SignedString([]byte(apiSecret))
	if err != nil {
		return nil, fmt.Errorf("sign feed server token: %w", err)
	}

	return &StreamClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		authHeader: serverToken,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger,
	}, nil
}

// Publish добавляет событие в ленту (user, userID). Вызывается после коммита
// записи в хранилище; любая ошибка оборачивается в ErrFeedUnavailable.
func (c *StreamClient) Publish(userID string, event domain.ActivityEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	endpoint := fmt.Sprintf("%s/feed/%s/%s/?api_key=%s",
		c.baseURL, streamGroup, url.PathEscape(userID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(log.Fields{
			"user_id": userID,
			"status":  resp.StatusCode,
		}).Warn("feed service rejected activity")
		return fmt.Errorf("%w: feed responded %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}

	c.logger.WithField("user_id", userID).Debug("activity published to feed")
	return nil
}

var _ domain.FeedPublisher = (*StreamClient)(nil)
