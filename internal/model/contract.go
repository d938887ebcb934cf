package model

import "time"

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Contract is an agreement to sell TotalVolume units at SalePrice over a date
// range. AttendedVolume counts volume committed to non-cancelled orders,
// PendingVolume what is still available; the two always sum to TotalVolume.
type Contract struct {
	ID                int64
	CorrelativeNumber string
	ClientID          int64
	TotalVolume       float64
	AttendedVolume    float64
	PendingVolume     float64
	SalePrice         float64
	StartDate         time.Time
	EndDate           time.Time
	Status            ContractStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ContractWithClient struct {
	Contract
	ClientName  string
	ClientEmail string
}

type ContractStats struct {
	Total          int64
	Active         int64
	Completed      int64
	Cancelled      int64
	TotalVolume    float64
	AttendedVolume float64
	PendingVolume  float64
	TotalValue     float64
}
