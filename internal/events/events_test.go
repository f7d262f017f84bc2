package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"multistore/internal/events"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func (m *MockBroker) Consume(queueName, exchange string, routingKeys []string, handler func(msg amqp.Delivery) error) error {
	args := m.Called(queueName, exchange, routingKeys, handler)
	return args.Error(0)
}

func TestRouter_DispatchesByType(t *testing.T) {
	router := events.NewRouter()
	var got []string
	router.Handle(events.OrderPlaced, func(_ context.Context, e events.Event) error {
		got = append(got, "placed:"+e.StoreID)
		return nil
	})
	router.HandleAll(func(_ context.Context, e events.Event) error {
		got = append(got, "all:"+e.Type)
		return nil
	})

	evt, err := events.New(events.OrderPlaced, "store-1", map[string]string{"order_id": "o1"})
	require.NoError(t, err)
	require.NoError(t, router.Dispatch(context.Background(), evt))

	evt2, _ := events.New(events.OrderPaid, "store-1", nil)
	require.NoError(t, router.Dispatch(context.Background(), evt2))

	assert.Equal(t, []string{"placed:store-1", "all:order.placed", "all:order.paid"}, got)
}

func TestRouter_JoinsHandlerErrors(t *testing.T) {
	router := events.NewRouter()
	router.HandleAll(func(context.Context, events.Event) error { return errors.New("first") })
	router.HandleAll(func(context.Context, events.Event) error { return errors.New("second") })

	evt, _ := events.New(events.OrderPaid, "s", nil)
	err := router.Dispatch(context.Background(), evt)
	assert.ErrorContains(t, err, "first")
	assert.ErrorContains(t, err, "second")

	// inline publishing logs instead of failing the caller
	bus := events.NewInline(router)
	assert.NoError(t, bus.Publish(context.Background(), evt))
	bus.Close()
}

func TestInline_PublishDoesNotWaitForHandlers(t *testing.T) {
	router := events.NewRouter()
	release := make(chan struct{})
	handled := make(chan string, 2)
	router.HandleAll(func(_ context.Context, e events.Event) error {
		<-release
		handled <- e.Type
		return nil
	})
	bus := events.NewInline(router)

	evt, _ := events.New(events.OrderPlaced, "s", nil)
	published := make(chan error, 1)
	go func() { published <- bus.Publish(context.Background(), evt) }()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow handler")
	}
	assert.Empty(t, handled)

	close(release)
	bus.Flush()
	assert.Equal(t, events.OrderPlaced, <-handled)

	bus.Close()
	assert.ErrorIs(t, bus.Publish(context.Background(), evt), events.ErrClosed)
}

func TestEventDecode(t *testing.T) {
	evt, err := events.New(events.NewsletterSubscribed, "s", map[string]string{"email": "a@b.co"})
	require.NoError(t, err)

	var payload struct {
		Email string `json:"email"`
	}
	require.NoError(t, evt.Decode(&payload))
	assert.Equal(t, "a@b.co", payload.Email)
}

func TestAMQPPublisher_RoutesByType(t *testing.T) {
	broker := new(MockBroker)
	evt, _ := events.New(events.OrderStatusChanged, "store-9", map[string]string{"status": "shipped"})

	broker.On("Publish", events.Exchange, events.OrderStatusChanged, mock.MatchedBy(func(body []byte) bool {
		var decoded events.Event
		return json.Unmarshal(body, &decoded) == nil && decoded.ID == evt.ID && decoded.StoreID == "store-9"
	})).Return(nil).Once()

	require.NoError(t, events.NewAMQPPublisher(broker).Publish(context.Background(), evt))
	broker.AssertExpectations(t)
}

func TestConsume_DispatchesDeliveries(t *testing.T) {
	broker := new(MockBroker)
	router := events.NewRouter()
	var seen events.Event
	router.Handle(events.OrderPaid, func(_ context.Context, e events.Event) error {
		seen = e
		return nil
	})

	var handler func(amqp.Delivery) error
	broker.On("Consume", "multistore.worker", events.Exchange, events.Types, mock.Anything).
		Run(func(args mock.Arguments) { handler = args.Get(3).(func(amqp.Delivery) error) }).
		Return(nil).Once()

	require.NoError(t, events.Consume(broker, "multistore.worker", router))
	require.NotNil(t, handler)

	evt, _ := events.New(events.OrderPaid, "store-2", nil)
	body, _ := json.Marshal(evt)
	require.NoError(t, handler(amqp.Delivery{Body: body}))
	assert.Equal(t, evt.ID, seen.ID)

	assert.Error(t, handler(amqp.Delivery{Body: []byte("not json")}))
}
