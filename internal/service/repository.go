package service

import (
	"context"
	"time"

	"github.com/ovapp/sales-ledger/internal/model"
)

// ClientStore is the persistence contract for clients.
type ClientStore interface {
	CreateClient(ctx context.Context, client *model.Client) (int64, error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	UpdateClient(ctx context.Context, client *model.Client) error
	DeleteClient(ctx context.Context, id int64) error
	CountClients(ctx context.Context) (int64, error)
	CountContractsByClient(ctx context.Context, clientID int64) (int64, error)
}

// ContractStore is the persistence contract for contracts.
type ContractStore interface {
	CreateContract(ctx context.Context, contract *model.Contract) (int64, error)
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	// GetContractForUpdate locks the contract row for the duration of the
	// surrounding transaction so volume checks cannot race.
	GetContractForUpdate(ctx context.Context, id int64) (*model.Contract, error)
	ListContracts(ctx context.Context) ([]model.Contract, error)
	ListContractsByClient(ctx context.Context, clientID int64) ([]model.Contract, error)
	ListRecentContracts(ctx context.Context, limit int) ([]model.ContractWithClient, error)
	MaxCorrelativeNumber(ctx context.Context) (string, error)
	UpdateContract(ctx context.Context, contract *model.Contract) error
	UpdateContractVolumes(ctx context.Context, id int64, attended, pending float64) error
	UpdateContractStatus(ctx context.Context, id int64, status model.ContractStatus) error
	DeleteContract(ctx context.Context, id int64) error
	CountOrdersByContract(ctx context.Context, contractID int64) (int64, error)
	CountContractsCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	ContractStats(ctx context.Context) (*model.ContractStats, error)
}

// OrderStore is the persistence contract for purchase orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.PurchaseOrder) (int64, error)
	GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	ListOrders(ctx context.Context) ([]model.PurchaseOrder, error)
	ListOrdersByContract(ctx context.Context, contractID int64) ([]model.PurchaseOrder, error)
	ListRecentOrders(ctx context.Context, limit int) ([]model.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, order *model.PurchaseOrder) error
	DeleteOrder(ctx context.Context, id int64) error
	OrderStats(ctx context.Context) (*model.OrderStats, error)
	OrderActivitySince(ctx context.Context, from time.Time) (count int64, revenue float64, err error)
	OrderActivityBetween(ctx context.Context, from, to time.Time) (count int64, volume, revenue float64, err error)
}

// SettingsStore is the persistence contract for the system settings record.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings *model.Settings) error
}

// Repository bundles the ledger's storage. Atomic runs fn against a
// transaction-bound Repository; every multi-record lifecycle transition goes
// through it.
type Repository interface {
	ClientStore
	ContractStore
	OrderStore
	SettingsStore

	Atomic(ctx context.Context, fn func(tx Repository) error) error
}
