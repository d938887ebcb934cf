package model

import "time"

// ExportDataset is a read-side snapshot of ledger data assembled for export.
// Nil slices mean the corresponding data set was not requested.
type ExportDataset struct {
	GeneratedAt time.Time
	Clients     []Client
	Contracts   []ContractWithClient
	Orders      []OrderWithContract
}

// ContractStatement is everything the printable contract statement needs.
type ContractStatement struct {
	Contract    ContractWithClient
	Orders      []PurchaseOrder
	CompanyName string
	Currency    string
}

type DashboardStats struct {
	TotalClients       int64
	ActiveContracts    int64
	MonthlyOrders      int64
	PendingVolume      float64
	TotalContractValue float64
	AttendedVolume     float64
	PendingOrders      int64
	CompletionRate     float64
	MonthlyRevenue     float64
	AverageOrderValue  float64
}

type RecentActivity struct {
	Contracts []ContractWithClient
	Orders    []OrderWithContract
}

// MonthlyTrend is one month's activity bucket for the dashboard trends chart.
type MonthlyTrend struct {
	Month     string
	Contracts int64
	Orders    int64
	Volume    float64
	Revenue   float64
}
