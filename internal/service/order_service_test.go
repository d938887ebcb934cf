package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovapp/sales-ledger/internal/model"
)

func mustContract(t *testing.T, contracts *ContractService, clientID int64, totalVolume float64) *model.Contract {
	t.Helper()
	contract, err := contracts.Create(context.Background(), activeContractInput(clientID, totalVolume))
	require.NoError(t, err)
	return contract
}

func assertVolumes(t *testing.T, contracts *ContractService, id int64, attended, pending float64) {
	t.Helper()
	contract, err := contracts.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, attended, contract.AttendedVolume, "attended volume")
	assert.Equal(t, pending, contract.PendingVolume, "pending volume")
	assert.Equal(t, contract.TotalVolume, contract.AttendedVolume+contract.PendingVolume, "volume invariant")
}

func TestOrderCreateCommitsVolume(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Nil(t, order.DeliveryDate)
	assert.False(t, order.OrderDate.IsZero())
	assertVolumes(t, contracts, contract.ID, 300, 700)
}

func TestOrderCreateVolumeBoundary(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	_, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 600, Price: 150})
	require.NoError(t, err)

	// Exactly the remaining pending volume is allowed.
	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 400, Price: 150})
	require.NoError(t, err)
	assertVolumes(t, contracts, contract.ID, 1000, 0)

	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 0.001, Price: 150})
	assert.ErrorIs(t, err, ErrVolumeExceeded)
}

func TestOrderCreateValidation(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	_, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 10, Price: -5})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = orders.Create(ctx, CreateOrderInput{ContractID: 99, Volume: 10, Price: 150})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderUpdateVolumeDelta(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)

	grow := 500.0
	updated, err := orders.Update(ctx, order.ID, UpdateOrderInput{Volume: &grow})
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.Volume)
	assertVolumes(t, contracts, contract.ID, 500, 500)

	shrink := 200.0
	_, err = orders.Update(ctx, order.ID, UpdateOrderInput{Volume: &shrink})
	require.NoError(t, err)
	assertVolumes(t, contracts, contract.ID, 200, 800)

	tooBig := 900.0
	_, err = orders.Update(ctx, order.ID, UpdateOrderInput{Volume: &tooBig})
	assert.ErrorIs(t, err, ErrVolumeExceeded)
}

func TestOrderUpdateRequiresPending(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkDelivered(ctx, order.ID, nil)
	require.NoError(t, err)

	price := 180.0
	_, err = orders.Update(ctx, order.ID, UpdateOrderInput{Price: &price})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkDeliveredKeepsVolume(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)

	when := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	delivered, err := orders.MarkDelivered(ctx, order.ID, &when)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveryDate)
	assert.Equal(t, when, *delivered.DeliveryDate)
	// Delivery is a fulfillment marker; the volume stays attended.
	assertVolumes(t, contracts, contract.ID, 300, 700)

	_, err = orders.MarkDelivered(ctx, order.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFullDeliveryCompletesContract(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	first, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 600, Price: 150})
	require.NoError(t, err)
	second, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 400, Price: 150})
	require.NoError(t, err)

	_, err = orders.MarkDelivered(ctx, first.ID, nil)
	require.NoError(t, err)

	got, err := contracts.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusActive, got.Status, "second order still pending")

	_, err = orders.MarkDelivered(ctx, second.ID, nil)
	require.NoError(t, err)

	got, err = contracts.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusCompleted, got.Status)
}

func TestOrderCancelReleasesVolume(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150, Notes: "rush delivery"})
	require.NoError(t, err)

	cancelled, err := orders.Cancel(ctx, order.ID, "client backed out")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "rush delivery")
	assert.Contains(t, cancelled.Notes, "[CANCELLED: client backed out]")
	assertVolumes(t, contracts, contract.ID, 0, 1000)

	_, err = orders.Cancel(ctx, order.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderCancelRejectsDelivered(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkDelivered(ctx, order.ID, nil)
	require.NoError(t, err)

	_, err = orders.Cancel(ctx, order.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkCancelledDerivesStatus(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	contracts.now = func() time.Time { return contract.EndDate.AddDate(0, 1, 0) }

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)

	cancelled, err := orders.MarkCancelled(ctx, order.ID, "out of stock")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assertVolumes(t, contracts, contract.ID, 0, 1000)

	// Only a cancelled order remains and the contract has expired.
	got, err := contracts.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusCancelled, got.Status)
}

func TestMarkCancelledReconcilesCorruptedLedger(t *testing.T) {
	repo, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)

	// Corrupt the stored volumes behind the service's back.
	require.NoError(t, repo.UpdateContractVolumes(ctx, contract.ID, 100, 900))

	cancelled, err := orders.MarkCancelled(ctx, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assertVolumes(t, contracts, contract.ID, 0, 1000)
}

// stuckVolumeRepo drops contract volume writes, simulating a store whose
// reconciliation repair does not take effect.
type stuckVolumeRepo struct {
	*memRepo
}

func (r *stuckVolumeRepo) Atomic(_ context.Context, fn func(tx Repository) error) error {
	return fn(r)
}

func (r *stuckVolumeRepo) UpdateContractVolumes(_ context.Context, _ int64, _, _ float64) error {
	return nil
}

func TestMarkCancelledFailsWhenRepairDoesNotStick(t *testing.T) {
	repo := &stuckVolumeRepo{memRepo: newMemRepo()}
	contracts := NewContractService(repo, zerolog.Nop())
	orders := NewOrderService(repo, contracts, zerolog.Nop())
	ctx := context.Background()

	contract, err := contracts.Create(ctx, activeContractInput(1, 1000))
	require.NoError(t, err)

	// The volume write is dropped, so attended stays 0 while the order holds 300.
	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	assertVolumes(t, contracts, contract.ID, 0, 1000)

	_, err = orders.MarkCancelled(ctx, order.ID, "")
	assert.ErrorIs(t, err, ErrDataInconsistency)

	got, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status, "order stays pending when cancellation fails")
}

func TestOrderReactivate(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkCancelled(ctx, order.ID, "postponed")
	require.NoError(t, err)
	assertVolumes(t, contracts, contract.ID, 0, 1000)

	reactivated, err := orders.Reactivate(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, reactivated.Status)
	assert.Nil(t, reactivated.DeliveryDate)
	assertVolumes(t, contracts, contract.ID, 300, 700)

	_, err = orders.Reactivate(ctx, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending order cannot be reactivated")
}

func TestOrderReactivateBlockedWhenVolumeTaken(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	order, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 600, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkCancelled(ctx, order.ID, "")
	require.NoError(t, err)

	// Another order takes most of the released volume.
	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 700, Price: 150})
	require.NoError(t, err)

	_, err = orders.Reactivate(ctx, order.ID)
	assert.ErrorIs(t, err, ErrVolumeExceeded)
	assertVolumes(t, contracts, contract.ID, 700, 300)
}

func TestOrderDeleteReleasesVolume(t *testing.T) {
	_, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	pending, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	delivered, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 200, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkDelivered(ctx, delivered.ID, nil)
	require.NoError(t, err)
	cancelled, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 100, Price: 150})
	require.NoError(t, err)
	_, err = orders.Cancel(ctx, cancelled.ID, "")
	require.NoError(t, err)

	assertVolumes(t, contracts, contract.ID, 500, 500)

	require.NoError(t, orders.Delete(ctx, pending.ID))
	assertVolumes(t, contracts, contract.ID, 200, 800)

	require.NoError(t, orders.Delete(ctx, delivered.ID))
	assertVolumes(t, contracts, contract.ID, 0, 1000)

	// A cancelled order already released its volume.
	require.NoError(t, orders.Delete(ctx, cancelled.ID))
	assertVolumes(t, contracts, contract.ID, 0, 1000)
}

func TestReconcileRebuildsVolumes(t *testing.T) {
	repo, contracts, orders := newTestServices(t)
	ctx := context.Background()
	contract := mustContract(t, contracts, 1, 1000)

	_, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	delivered, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 200, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkDelivered(ctx, delivered.ID, nil)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateContractVolumes(ctx, contract.ID, 950, 50))

	require.NoError(t, orders.Reconcile(ctx, contract.ID))
	assertVolumes(t, contracts, contract.ID, 500, 500)
}

func TestOrderSearch(t *testing.T) {
	repo, contracts, orders := newTestServices(t)
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, &model.Client{Name: "Acme Corp", Email: "ops@acme.test"})
	require.NoError(t, err)
	contract := mustContract(t, contracts, 1, 1000)

	first, err := orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150, Notes: "north warehouse"})
	require.NoError(t, err)
	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 200, Price: 150})
	require.NoError(t, err)
	_, err = orders.MarkCancelled(ctx, first.ID, "")
	require.NoError(t, err)

	byClient, err := orders.Search(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	byNotes, err := orders.Search(ctx, "warehouse")
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	assert.Equal(t, first.ID, byNotes[0].ID)

	byStatus, err := orders.Search(ctx, "cancelled")
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, first.ID, byStatus[0].ID)

	byNumber, err := orders.Search(ctx, contract.CorrelativeNumber)
	require.NoError(t, err)
	assert.Len(t, byNumber, 2)

	all, err := orders.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderListEnrichment(t *testing.T) {
	repo, contracts, orders := newTestServices(t)
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, &model.Client{Name: "Acme Corp"})
	require.NoError(t, err)
	contract := mustContract(t, contracts, 1, 1000)

	orphanContract := mustContract(t, contracts, 77, 500)

	_, err = orders.Create(ctx, CreateOrderInput{ContractID: contract.ID, Volume: 300, Price: 150})
	require.NoError(t, err)
	_, err = orders.Create(ctx, CreateOrderInput{ContractID: orphanContract.ID, Volume: 100, Price: 150})
	require.NoError(t, err)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NotNil(t, list[0].Contract)
	assert.Equal(t, "Acme Corp", list[0].Contract.ClientName)
	assert.Equal(t, contract.CorrelativeNumber, list[0].Contract.CorrelativeNumber)

	require.NotNil(t, list[1].Contract)
	assert.Equal(t, "unknown client", list[1].Contract.ClientName)
}

func TestOrderCanCancelCanEdit(t *testing.T) {
	_, _, orders := newTestServices(t)

	pending := &model.PurchaseOrder{Status: model.OrderStatusPending}
	delivered := &model.PurchaseOrder{Status: model.OrderStatusDelivered}
	cancelled := &model.PurchaseOrder{Status: model.OrderStatusCancelled}

	assert.True(t, orders.CanCancel(pending))
	assert.True(t, orders.CanEdit(pending))
	assert.False(t, orders.CanCancel(delivered))
	assert.False(t, orders.CanEdit(delivered))
	assert.False(t, orders.CanCancel(cancelled))
	assert.False(t, orders.CanEdit(cancelled))
}
