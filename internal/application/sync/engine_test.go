package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderRepo struct {
	byID map[uuid.UUID]*order.Order
}

func newFakeOrderRepo(orders ...*order.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{byID: make(map[uuid.UUID]*order.Order)}
	for _, o := range orders {
		r.byID[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	return r.byID[id], nil
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*order.Order, error) {
	for _, o := range r.byID {
		if o.Number == number {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByExternalCrmID(_ context.Context, externalID string) (*order.Order, error) {
	for _, o := range r.byID {
		if o.ExternalCrmID == externalID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByTransactionID(_ context.Context, transactionID string) (*order.Order, error) {
	for _, o := range r.byID {
		if o.TransactionID == transactionID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindBySourceID(_ context.Context, sourceID string) (*order.Order, error) {
	for _, o := range r.byID {
		if o.SourceID == sourceID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.byID[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	o.IncrementVersion()
	r.byID[o.ID] = o
	return nil
}

var _ order.Repository = (*fakeOrderRepo)(nil)

type fakeCrmClient struct {
	createErr     error
	updateErr     error
	nextID        string
	createdDrafts []integration.OrderDraft
	statusPushes  []string
}

func (c *fakeCrmClient) CreateOrder(_ context.Context, draft integration.OrderDraft) (string, error) {
	c.createdDrafts = append(c.createdDrafts, draft)
	if c.createErr != nil {
		return "", c.createErr
	}
	return c.nextID, nil
}

func (c *fakeCrmClient) UpdateStatus(_ context.Context, externalID, externalStatus string) error {
	c.statusPushes = append(c.statusPushes, externalID+":"+externalStatus)
	return c.updateErr
}

type fakeMappingRepo struct {
	byRef map[string]int
}

func (r *fakeMappingRepo) FindByProductRef(_ context.Context, ref string) (*integration.ProductMapping, error) {
	id, ok := r.byRef[ref]
	if !ok {
		return nil, nil
	}
	return integration.NewProductMapping(ref, id), nil
}

func (r *fakeMappingRepo) FindAll(_ context.Context) ([]integration.ProductMapping, error) {
	return nil, nil
}

func (r *fakeMappingRepo) Save(_ context.Context, _ *integration.ProductMapping) error {
	return nil
}

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func newTestOrder(t *testing.T, refs ...string) *order.Order {
	t.Helper()
	if len(refs) == 0 {
		refs = []string{"sku-1"}
	}
	items := make([]order.Item, len(refs))
	for i, ref := range refs {
		items[i] = order.Item{ProductRef: ref, Quantity: 10, UnitPriceMinor: 10000}
	}
	o, err := order.NewOrder(fmt.Sprintf("SO-%s", uuid.NewString()[:8]),
		decimal.NewFromInt(1000), "THB",
		order.BillingContact{FirstName: "Nok", LastName: "S", Phone: "+66811111111", Email: "nok@example.com"},
		items,
	)
	require.NoError(t, err)
	return o
}

func newTestEngine(repo *fakeOrderRepo, crm *fakeCrmClient, mappings *fakeMappingRepo) (*OrderSyncEngine, *capturingPublisher) {
	if mappings == nil {
		mappings = &fakeMappingRepo{byRef: map[string]int{"sku-1": 11, "sku-2": 22}}
	}
	pub := &capturingPublisher{}
	engine := NewOrderSyncEngine(repo, crm, integration.NewDefaultStatusMapper(), mappings, pub, zap.NewNop())
	return engine, pub
}

func TestSyncOrder_Success(t *testing.T) {
	o := newTestOrder(t, "sku-1", "sku-2")
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-100"}
	engine, pub := newTestEngine(repo, crm, nil)

	err := engine.SyncOrder(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, "crm-100", o.ExternalCrmID)
	assert.Equal(t, order.SyncStateSynced, o.SyncState)
	assert.True(t, o.HasNote("synced to CRM as order crm-100"))

	require.Len(t, crm.createdDrafts, 1)
	draft := crm.createdDrafts[0]
	assert.Equal(t, "Nok", draft.FirstName)
	require.Len(t, draft.Items, 2)
	assert.Equal(t, 11, draft.Items[0].ItemID)
	assert.Equal(t, int64(10000), draft.Items[0].PriceMinor)

	require.Len(t, pub.events, 1)
	assert.Equal(t, order.EventTypeSynced, pub.events[0].EventType())
}

func TestSyncOrder_AlreadySyncedIsNoop(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-1"))
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-2"}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.SyncOrder(context.Background(), o.ID))
	assert.Empty(t, crm.createdDrafts)
	assert.Equal(t, "crm-1", o.ExternalCrmID)
}

func TestSyncOrder_UnmappedProductsExcluded(t *testing.T) {
	o := newTestOrder(t, "sku-1", "sku-unknown")
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-100"}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.SyncOrder(context.Background(), o.ID))

	require.Len(t, crm.createdDrafts, 1)
	require.Len(t, crm.createdDrafts[0].Items, 1)
	assert.Equal(t, 11, crm.createdDrafts[0].Items[0].ItemID)
}

func TestSyncOrder_NoMappedItemsMarksFailed(t *testing.T) {
	o := newTestOrder(t, "sku-unknown")
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-100"}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.SyncOrder(context.Background(), o.ID))

	assert.Empty(t, crm.createdDrafts)
	assert.Equal(t, order.SyncStateFailed, o.SyncState)
	assert.Empty(t, o.ExternalCrmID)
}

func TestSyncOrder_CrmRejectionRecordedWithoutError(t *testing.T) {
	o := newTestOrder(t)
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{createErr: fmt.Errorf("%w: invalid project", integration.ErrCrmRejected)}
	engine, _ := newTestEngine(repo, crm, nil)

	err := engine.SyncOrder(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, order.SyncStateFailed, o.SyncState)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Empty(t, o.ExternalCrmID)

	require.Len(t, o.Notes, 1)
	assert.Contains(t, o.Notes[0].Text, "invalid project")
}

func TestSyncOrder_NotFound(t *testing.T) {
	engine, _ := newTestEngine(newFakeOrderRepo(), &fakeCrmClient{}, nil)
	err := engine.SyncOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPushStatus_Success(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-5"))
	_, err := o.TransitionTo(order.StatusProcessing)
	require.NoError(t, err)
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.PushStatus(context.Background(), o.ID))

	require.Len(t, crm.statusPushes, 1)
	assert.Equal(t, "crm-5:in_progress", crm.statusPushes[0])
	assert.Equal(t, order.SyncStateSynced, o.SyncState)
}

func TestPushStatus_UnsyncedOrderSkipped(t *testing.T) {
	o := newTestOrder(t)
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.PushStatus(context.Background(), o.ID))
	assert.Empty(t, crm.statusPushes)
}

func TestPushStatus_UnmappedStatusSkipped(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-5"))
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	pub := &capturingPublisher{}
	mapper := integration.NewStatusMapper(map[order.Status]string{
		order.StatusCompleted: "completed",
	})
	engine := NewOrderSyncEngine(repo, crm, mapper,
		&fakeMappingRepo{byRef: map[string]int{}}, pub, zap.NewNop())

	require.NoError(t, engine.PushStatus(context.Background(), o.ID))
	assert.Empty(t, crm.statusPushes)
}

func TestPushStatus_FailureKeepsLocalStatus(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-5"))
	_, err := o.TransitionTo(order.StatusProcessing)
	require.NoError(t, err)
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{updateErr: integration.ErrCrmUnavailable}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.PushStatus(context.Background(), o.ID))

	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Equal(t, order.SyncStateFailed, o.SyncState)
	require.Len(t, o.Notes, 1)
	assert.Contains(t, o.Notes[0].Text, "status push failed")
}

func TestRetrySync_UnsyncedCreatesOrder(t *testing.T) {
	o := newTestOrder(t)
	o.MarkSyncFailed()
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{nextID: "crm-7"}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.RetrySync(context.Background(), o.ID))
	assert.Equal(t, "crm-7", o.ExternalCrmID)
	assert.Equal(t, order.SyncStateSynced, o.SyncState)
}

func TestRetrySync_SyncedPushesStatus(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-7"))
	o.MarkSyncFailed()
	repo := newFakeOrderRepo(o)
	crm := &fakeCrmClient{}
	engine, _ := newTestEngine(repo, crm, nil)

	require.NoError(t, engine.RetrySync(context.Background(), o.ID))
	require.Len(t, crm.statusPushes, 1)
	assert.Empty(t, crm.createdDrafts)
	assert.Equal(t, order.SyncStateSynced, o.SyncState)
}

func TestApplyCrmStatus_MapsAndApplies(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-9"))
	repo := newFakeOrderRepo(o)
	engine, _ := newTestEngine(repo, &fakeCrmClient{}, nil)

	require.NoError(t, engine.ApplyCrmStatus(context.Background(), "crm-9", "in_progress"))
	assert.Equal(t, order.StatusProcessing, o.Status)
	require.Len(t, o.Notes, 1)
}

func TestApplyCrmStatus_ReplayIsNoop(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-9"))
	repo := newFakeOrderRepo(o)
	engine, _ := newTestEngine(repo, &fakeCrmClient{}, nil)
	ctx := context.Background()

	require.NoError(t, engine.ApplyCrmStatus(ctx, "crm-9", "in_progress"))
	require.NoError(t, engine.ApplyCrmStatus(ctx, "crm-9", "in_progress"))

	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Len(t, o.Notes, 1)
}

func TestApplyCrmStatus_UnmappedStatusIgnored(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-9"))
	repo := newFakeOrderRepo(o)
	engine, _ := newTestEngine(repo, &fakeCrmClient{}, nil)

	require.NoError(t, engine.ApplyCrmStatus(context.Background(), "crm-9", "packing"))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Empty(t, o.Notes)
}

func TestApplyCrmStatus_OverridesLocalTransitionRules(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.SetExternalCrmID("crm-9"))
	_, err := o.TransitionTo(order.StatusProcessing)
	require.NoError(t, err)
	_, err = o.TransitionTo(order.StatusCompleted)
	require.NoError(t, err)
	repo := newFakeOrderRepo(o)
	engine, _ := newTestEngine(repo, &fakeCrmClient{}, nil)

	// completed -> cancelled is not reachable locally, but the CRM decides
	// its own status changes
	require.NoError(t, engine.ApplyCrmStatus(context.Background(), "crm-9", "cancelled"))
	assert.Equal(t, order.StatusCancelled, o.Status)
	assert.True(t, o.HasNote("status set to cancelled via CRM webhook"))
}

func TestApplyCrmStatus_UnknownOrder(t *testing.T) {
	engine, _ := newTestEngine(newFakeOrderRepo(), &fakeCrmClient{}, nil)
	err := engine.ApplyCrmStatus(context.Background(), "crm-none", "in_progress")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
