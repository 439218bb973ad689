package shipment_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	"github.com/vladislavdragonenkov/shiptrack/internal/feed"
	shipmentsvc "github.com/vladislavdragonenkov/shiptrack/internal/service/shipment"
	"github.com/vladislavdragonenkov/shiptrack/internal/storage/memory"
	"github.com/vladislavdragonenkov/shiptrack/internal/token"
)

const testSecret = "test-secret"

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("test", "shipment-service")
}

type fixture struct {
	repo      domain.ShipmentRepository
	tokens    *token.Service
	publisher *feed.MockPublisher
	svc       *shipmentsvc.Service
}

func newFixture(t *testing.T, opts shipmentsvc.Options) *fixture {
	t.Helper()
	repo := memory.NewShipmentRepository()
	tokens := token.NewService(testSecret, 0)
	publisher := feed.NewMockPublisher()
	svc := shipmentsvc.NewService(repo, tokens, publisher, opts, loggerForTests())
	return &fixture{repo: repo, tokens: tokens, publisher: publisher, svc: svc}
}

func (f *fixture) envelope(t *testing.T, userID string, fields map[string]any) shipmentsvc.Envelope {
	t.Helper()
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	if userID != "" {
		raw, err := f.tokens.Issue(userID)
		require.NoError(t, err)
		body["headers"] = map[string]string{"Authorization": "Bearer " + raw}
	}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	env, err := shipmentsvc.ParseEnvelope(encoded)
	require.NoError(t, err)
	return env
}

func shipmentFields() map[string]any {
	return map[string]any{
		"item":             "box",
		"description":      "d",
		"status":           "pending",
		"tracking_number":  "TN1",
		"current_location": "LA",
		"source":           "LA",
		"destination":      "NY",
		"arrival":          "2024-01-01",
	}
}

func TestCreateShipment_Success(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	result, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)
	require.False(t, result.FeedWarning)
	require.Equal(t, int64(1), result.Shipment.ID)
	require.Equal(t, "box", result.Shipment.Item)
	require.Equal(t, "TN1", result.Shipment.TrackingNumber)

	stored, err := f.repo.Get(result.Shipment.ID)
	require.NoError(t, err)
	require.Equal(t, result.Shipment, stored)
}

func TestCreateShipment_PublishesOneActivity(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	result, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	published := f.publisher.Published()
	require.Len(t, published, 1)
	require.Equal(t, "u1", published[0].UserID)

	event := published[0].Event
	require.Equal(t, "u1", event.Actor)
	require.Equal(t, domain.VerbShip, event.Verb)
	require.Equal(t, "Place:42", event.Object)
	require.Equal(t, result.Shipment.Item, event.Extra["item"])
	require.Equal(t, result.Shipment.Status, event.Extra["status"])
	require.Equal(t, result.Shipment.TrackingNumber, event.Extra["tracking_number"])
	require.Equal(t, result.Shipment.Arrival, event.Extra["arrival"])
	require.NotContains(t, event.Extra, "current_location")
}

func TestCreateShipment_NoAuthHeaderWritesNothing(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	_, err := f.svc.CreateShipment(f.envelope(t, "", shipmentFields()))
	require.ErrorIs(t, err, domain.ErrMalformedAuthHeader)

	shipments, listErr := f.repo.List()
	require.NoError(t, listErr)
	require.Empty(t, shipments)
	require.Empty(t, f.publisher.Published())
}

func TestCreateShipment_InvalidToken(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	env, err := shipmentsvc.ParseEnvelope([]byte(`{
		"headers": {"Authorization": "Bearer not-a-valid-token"},
		"item": "box"
	}`))
	require.NoError(t, err)

	_, err = f.svc.CreateShipment(env)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	shipments, listErr := f.repo.List()
	require.NoError(t, listErr)
	require.Empty(t, shipments)
}

func TestCreateShipment_ShortAuthHeader(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	env, err := shipmentsvc.ParseEnvelope([]byte(`{
		"headers": {"Authorization": "Bearer"},
		"item": "box"
	}`))
	require.NoError(t, err)

	_, err = f.svc.CreateShipment(env)
	require.ErrorIs(t, err, domain.ErrMalformedAuthHeader)
}

func TestCreateShipment_FeedFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})
	f.publisher.FailWith(fmt.Errorf("%w: boom", domain.ErrFeedUnavailable))

	result, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)
	require.True(t, result.FeedWarning)

	// Запись в хранилище должна пережить сбой ленты.
	stored, err := f.repo.Get(result.Shipment.ID)
	require.NoError(t, err)
	require.Equal(t, "box", stored.Item)
}

func TestGetShipment_NotFound(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	_, err := f.svc.GetShipment(42)
	require.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestUpdateShipment_PartialFields(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	created, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	result, err := f.svc.UpdateShipment(created.Shipment.ID, f.envelope(t, "u1", map[string]any{
		"status": "delivered",
	}))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"status": "delivered"}, result.Applied)

	stored, err := f.repo.Get(created.Shipment.ID)
	require.NoError(t, err)
	require.Equal(t, "delivered", stored.Status)

	// Остальные поля не затронуты.
	stored.Status = created.Shipment.Status
	require.Equal(t, created.Shipment, stored)
}

func TestUpdateShipment_MissingAuthorization(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	created, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	_, err = f.svc.UpdateShipment(created.Shipment.ID, f.envelope(t, "", map[string]any{
		"status": "delivered",
	}))
	require.ErrorIs(t, err, domain.ErrMissingAuthorization)

	stored, getErr := f.repo.Get(created.Shipment.ID)
	require.NoError(t, getErr)
	require.Equal(t, "pending", stored.Status)
}

func TestUpdateShipment_NotFound(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	_, err := f.svc.UpdateShipment(42, f.envelope(t, "u1", map[string]any{"status": "delivered"}))
	require.ErrorIs(t, err, domain.ErrShipmentNotFound)
	require.Empty(t, f.publisher.Published())
}

func TestUpdateShipment_PermissiveMerge(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	created, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	_, err = f.svc.UpdateShipment(created.Shipment.ID, f.envelope(t, "u1", map[string]any{
		"status": "delivered",
		"custom": "anything",
	}))
	require.NoError(t, err)

	published := f.publisher.Published()
	require.Len(t, published, 2)

	event := published[1].Event
	require.Equal(t, "u1", event.Actor)
	require.Equal(t, domain.VerbShip, event.Verb)
	require.Equal(t, "delivered", event.Extra["status"])
	require.Equal(t, "anything", event.Extra["custom"])
}

func TestUpdateShipment_AllowlistMerge(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{AllowlistOnly: true})

	created, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	_, err = f.svc.UpdateShipment(created.Shipment.ID, f.envelope(t, "u1", map[string]any{
		"status": "delivered",
		"custom": "anything",
	}))
	require.NoError(t, err)

	published := f.publisher.Published()
	require.Len(t, published, 2)

	event := published[1].Event
	require.Equal(t, "delivered", event.Extra["status"])
	require.NotContains(t, event.Extra, "custom")
}

func TestUpdateShipment_ActivityObjectOverride(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{ActivityObject: "Shipment:any"})

	_, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	published := f.publisher.Published()
	require.Len(t, published, 1)
	require.Equal(t, "Shipment:any", published[0].Event.Object)
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := shipmentsvc.ParseEnvelope([]byte(`[1,2,3]`))
	require.Error(t, err)

	_, err = shipmentsvc.ParseEnvelope([]byte(`{"headers": "not-an-object"}`))
	require.ErrorIs(t, err, domain.ErrMalformedAuthHeader)
}

func TestParseEnvelope_StripsHeaders(t *testing.T) {
	env, err := shipmentsvc.ParseEnvelope([]byte(`{
		"headers": {"Authorization": "Bearer x"},
		"item": "box"
	}`))
	require.NoError(t, err)

	_, ok := env.Authorization()
	require.True(t, ok)
	require.NotContains(t, env.Fields, "headers")

	fields, err := env.DomainFields()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"item": "box"}, fields)
}

var errSentinel = errors.New("sentinel")

func TestUpdateShipment_FeedFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, shipmentsvc.Options{})

	created, err := f.svc.CreateShipment(f.envelope(t, "u1", shipmentFields()))
	require.NoError(t, err)

	f.publisher.FailWith(errSentinel)
	result, err := f.svc.UpdateShipment(created.Shipment.ID, f.envelope(t, "u1", map[string]any{
		"status": "delivered",
	}))
	require.NoError(t, err)
	require.True(t, result.FeedWarning)

	stored, getErr := f.repo.Get(created.Shipment.ID)
	require.NoError(t, getErr)
	require.Equal(t, "delivered", stored.Status)
}
