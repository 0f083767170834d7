package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Order", uuid.New())
	return &e
}

func TestPublish_DispatchesToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"order.paid"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), testEvent("order.paid")))
	require.NoError(t, bus.Publish(context.Background(), testEvent("order.refunded")))

	assert.Len(t, h.received, 1)
	assert.Equal(t, "order.paid", h.received[0].EventType())
}

func TestPublish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent("order.paid"), testEvent("order.refunded")))

	assert.Len(t, h.received, 2)
}

func TestPublish_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"order.paid"}, err: errors.New("fail")}
	ok := &recordingHandler{types: []string{"order.paid"}}
	bus.Subscribe(failing)
	bus.Subscribe(ok)

	require.NoError(t, bus.Publish(context.Background(), testEvent("order.paid")))
	assert.Len(t, ok.received, 1)
}

func TestPublish_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{"order.paid"}, panics: true}
	ok := &recordingHandler{types: []string{"order.paid"}}
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), testEvent("order.paid"))
	})
	assert.Len(t, ok.received, 1)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"order.paid"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), testEvent("order.paid")))
	assert.Empty(t, h.received)
}
