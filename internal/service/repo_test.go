package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

// memRepo is an in-memory Repository used by the service tests. Atomic runs
// the callback against the same instance; the tests exercise service
// semantics, not transaction isolation.
type memRepo struct {
	clients   map[int64]model.Client
	contracts map[int64]model.Contract
	orders    map[int64]model.PurchaseOrder
	settings  *model.Settings
	nextID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		clients:   make(map[int64]model.Client),
		contracts: make(map[int64]model.Contract),
		orders:    make(map[int64]model.PurchaseOrder),
		nextID:    1,
	}
}

func (m *memRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memRepo) Atomic(_ context.Context, fn func(tx Repository) error) error {
	return fn(m)
}

func (m *memRepo) CreateClient(_ context.Context, client *model.Client) (int64, error) {
	client.ID = m.id()
	m.clients[client.ID] = *client
	return client.ID, nil
}

func (m *memRepo) GetClient(_ context.Context, id int64) (*model.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (m *memRepo) ListClients(_ context.Context) ([]model.Client, error) {
	out := make([]model.Client, 0, len(m.clients))
	for _, client := range m.clients {
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) UpdateClient(_ context.Context, client *model.Client) error {
	if _, ok := m.clients[client.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.clients[client.ID] = *client
	return nil
}

func (m *memRepo) DeleteClient(_ context.Context, id int64) error {
	if _, ok := m.clients[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *memRepo) CountClients(_ context.Context) (int64, error) {
	return int64(len(m.clients)), nil
}

func (m *memRepo) CountContractsByClient(_ context.Context, clientID int64) (int64, error) {
	var count int64
	for _, contract := range m.contracts {
		if contract.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) CreateContract(_ context.Context, contract *model.Contract) (int64, error) {
	contract.ID = m.id()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = time.Now()
	}
	m.contracts[contract.ID] = *contract
	return contract.ID, nil
}

func (m *memRepo) GetContract(_ context.Context, id int64) (*model.Contract, error) {
	contract, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (m *memRepo) GetContractForUpdate(ctx context.Context, id int64) (*model.Contract, error) {
	return m.GetContract(ctx, id)
}

func (m *memRepo) ListContracts(_ context.Context) ([]model.Contract, error) {
	out := make([]model.Contract, 0, len(m.contracts))
	for _, contract := range m.contracts {
		out = append(out, contract)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) ListContractsByClient(_ context.Context, clientID int64) ([]model.Contract, error) {
	var out []model.Contract
	for _, contract := range m.contracts {
		if contract.ClientID == clientID {
			out = append(out, contract)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) ListRecentContracts(ctx context.Context, limit int) ([]model.ContractWithClient, error) {
	contracts, _ := m.ListContracts(ctx)
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID > contracts[j].ID })
	if len(contracts) > limit {
		contracts = contracts[:limit]
	}
	out := make([]model.ContractWithClient, 0, len(contracts))
	for _, contract := range contracts {
		enriched := model.ContractWithClient{Contract: contract}
		if client, ok := m.clients[contract.ClientID]; ok {
			enriched.ClientName = client.Name
			enriched.ClientEmail = client.Email
		}
		out = append(out, enriched)
	}
	return out, nil
}

func (m *memRepo) MaxCorrelativeNumber(_ context.Context) (string, error) {
	// Longer strings outrank shorter ones, matching the length-aware SQL
	// ordering in the real store.
	max := ""
	for _, contract := range m.contracts {
		n := contract.CorrelativeNumber
		if len(n) > len(max) || (len(n) == len(max) && strings.Compare(n, max) > 0) {
			max = n
		}
	}
	return max, nil
}

func (m *memRepo) UpdateContract(_ context.Context, contract *model.Contract) error {
	if _, ok := m.contracts[contract.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.contracts[contract.ID] = *contract
	return nil
}

func (m *memRepo) UpdateContractVolumes(_ context.Context, id int64, attended, pending float64) error {
	contract, ok := m.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.AttendedVolume = attended
	contract.PendingVolume = pending
	m.contracts[id] = contract
	return nil
}

func (m *memRepo) UpdateContractStatus(_ context.Context, id int64, status model.ContractStatus) error {
	contract, ok := m.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = status
	m.contracts[id] = contract
	return nil
}

func (m *memRepo) DeleteContract(_ context.Context, id int64) error {
	if _, ok := m.contracts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.contracts, id)
	return nil
}

func (m *memRepo) CountOrdersByContract(_ context.Context, contractID int64) (int64, error) {
	var count int64
	for _, order := range m.orders {
		if order.ContractID == contractID {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) CountContractsCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	var count int64
	for _, contract := range m.contracts {
		if !contract.CreatedAt.Before(from) && contract.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) ContractStats(_ context.Context) (*model.ContractStats, error) {
	stats := &model.ContractStats{}
	for _, contract := range m.contracts {
		stats.Total++
		switch contract.Status {
		case model.ContractStatusActive:
			stats.Active++
		case model.ContractStatusCompleted:
			stats.Completed++
		case model.ContractStatusCancelled:
			stats.Cancelled++
		}
		stats.TotalVolume += contract.TotalVolume
		stats.AttendedVolume += contract.AttendedVolume
		stats.PendingVolume += contract.PendingVolume
		stats.TotalValue += contract.TotalVolume * contract.SalePrice
	}
	return stats, nil
}

func (m *memRepo) CreateOrder(_ context.Context, order *model.PurchaseOrder) (int64, error) {
	order.ID = m.id()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.orders[order.ID] = *order
	return order.ID, nil
}

func (m *memRepo) GetOrder(_ context.Context, id int64) (*model.PurchaseOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &order, nil
}

func (m *memRepo) ListOrders(_ context.Context) ([]model.PurchaseOrder, error) {
	out := make([]model.PurchaseOrder, 0, len(m.orders))
	for _, order := range m.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) ListOrdersByContract(_ context.Context, contractID int64) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	for _, order := range m.orders {
		if order.ContractID == contractID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) ListRecentOrders(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	orders, _ := m.ListOrders(ctx)
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *memRepo) UpdateOrder(_ context.Context, order *model.PurchaseOrder) error {
	if _, ok := m.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *memRepo) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memRepo) OrderStats(_ context.Context) (*model.OrderStats, error) {
	stats := &model.OrderStats{}
	for _, order := range m.orders {
		stats.Total++
		switch order.Status {
		case model.OrderStatusPending:
			stats.Pending++
		case model.OrderStatusDelivered:
			stats.Delivered++
		case model.OrderStatusCancelled:
			stats.Cancelled++
		}
		if order.Status != model.OrderStatusCancelled {
			stats.TotalVolume += order.Volume
			stats.TotalValue += order.Volume * order.Price
		}
	}
	return stats, nil
}

func (m *memRepo) OrderActivitySince(_ context.Context, from time.Time) (int64, float64, error) {
	var count int64
	var revenue float64
	for _, order := range m.orders {
		if order.OrderDate.Before(from) {
			continue
		}
		count++
		if order.Status != model.OrderStatusCancelled {
			revenue += order.Volume * order.Price
		}
	}
	return count, revenue, nil
}

func (m *memRepo) OrderActivityBetween(_ context.Context, from, to time.Time) (int64, float64, float64, error) {
	var count int64
	var volume, revenue float64
	for _, order := range m.orders {
		if order.OrderDate.Before(from) || !order.OrderDate.Before(to) {
			continue
		}
		count++
		volume += order.Volume
		revenue += order.Volume * order.Price
	}
	return count, volume, revenue, nil
}

func (m *memRepo) GetSettings(_ context.Context) (*model.Settings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m.settings
	return &copied, nil
}

func (m *memRepo) SaveSettings(_ context.Context, settings *model.Settings) error {
	if settings.ID == 0 {
		settings.ID = m.id()
	}
	copied := *settings
	m.settings = &copied
	return nil
}

var _ Repository = (*memRepo)(nil)
