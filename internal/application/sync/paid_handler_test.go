package sync

import (
	"context"
	"testing"
	"time"

	"github.com/storesync/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdemStore struct {
	seen map[string]bool
}

func (s *fakeIdemStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdemStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.seen[key], nil
}

func (s *fakeIdemStore) Close() error { return nil }

func TestPaidOrderHandler_TriggersSync(t *testing.T) {
	o := newTestOrder(t)
	o.MarkPaid("chrg_20")
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	o.ClearDomainEvents()

	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-20"}
	engine, _ := newTestEngine(repo, crm, nil)
	handler := NewPaidOrderHandler(engine, &fakeIdemStore{seen: map[string]bool{}}, time.Hour, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), events[0]))
	assert.Equal(t, "crm-20", o.ExternalCrmID)
	require.Len(t, crm.createdDrafts, 1)
}

func TestPaidOrderHandler_DuplicateEventSkipped(t *testing.T) {
	o := newTestOrder(t)
	o.MarkPaid("chrg_21")
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	o.ClearDomainEvents()

	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-21"}
	engine, _ := newTestEngine(repo, crm, nil)
	handler := NewPaidOrderHandler(engine, &fakeIdemStore{seen: map[string]bool{}}, time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, handler.Handle(ctx, events[0]))
	require.NoError(t, handler.Handle(ctx, events[0]))

	assert.Len(t, crm.createdDrafts, 1)
	assert.Len(t, crm.statusPushes, 0)
}

func TestPaidOrderHandler_EventTypes(t *testing.T) {
	handler := NewPaidOrderHandler(nil, &fakeIdemStore{seen: map[string]bool{}}, time.Hour, zap.NewNop())
	assert.Equal(t, []string{order.EventTypePaid}, handler.EventTypes())
}
