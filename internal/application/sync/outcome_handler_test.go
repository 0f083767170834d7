package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentOutcomeHandler_PushesFailedStatus(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-30"))
	require.True(t, o.MarkPaymentFailed("card expired"))
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	o.ClearDomainEvents()

	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)
	handler := NewPaymentOutcomeHandler(engine, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), events[0]))
	require.Len(t, crm.statusPushes, 1)
	assert.Equal(t, "crm-30:failed", crm.statusPushes[0])
}

func TestPaymentOutcomeHandler_PushesRefundedStatus(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-31"))
	o.MarkPaid("chrg_31")
	o.ClearDomainEvents()
	o.MarkRefunded(decimal.NewFromInt(100))
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	o.ClearDomainEvents()

	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)
	handler := NewPaymentOutcomeHandler(engine, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), events[0]))
	require.Len(t, crm.statusPushes, 1)
	assert.Equal(t, "crm-31:refunded", crm.statusPushes[0])
}

func TestPaymentOutcomeHandler_UnsyncedOrderSkipped(t *testing.T) {
	o := newTestOrder(t)
	require.True(t, o.MarkPaymentFailed("declined"))
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	o.ClearDomainEvents()

	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)
	handler := NewPaymentOutcomeHandler(engine, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), events[0]))
	assert.Empty(t, crm.statusPushes)
}

func TestPaymentOutcomeHandler_EventTypes(t *testing.T) {
	handler := NewPaymentOutcomeHandler(nil, zap.NewNop())
	assert.Equal(t,
		[]string{order.EventTypePaymentFailed, order.EventTypeRefunded},
		handler.EventTypes())
}
