package service

import (
	"context"
	"time"

	"github.com/ovapp/sales-ledger/internal/model"
)

// DashboardService composes read-only headline figures for the landing page.
type DashboardService struct {
	repo      Repository
	contracts *ContractService
	orders    *OrderService
	now       func() time.Time
}

func NewDashboardService(repo Repository, contracts *ContractService, orders *OrderService) *DashboardService {
	return &DashboardService{
		repo:      repo,
		contracts: contracts,
		orders:    orders,
		now:       time.Now,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	clients, err := s.repo.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	contractStats, err := s.repo.ContractStats(ctx)
	if err != nil {
		return nil, err
	}
	orderStats, err := s.repo.OrderStats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthlyOrders, monthlyRevenue, err := s.repo.OrderActivitySince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalClients:       clients,
		ActiveContracts:    contractStats.Active,
		MonthlyOrders:      monthlyOrders,
		PendingVolume:      contractStats.PendingVolume,
		TotalContractValue: contractStats.TotalValue,
		AttendedVolume:     contractStats.AttendedVolume,
		PendingOrders:      orderStats.Pending,
		MonthlyRevenue:     monthlyRevenue,
	}
	if contractStats.TotalVolume > 0 {
		stats.CompletionRate = contractStats.AttendedVolume / contractStats.TotalVolume * 100
	}
	if orderStats.Total > 0 {
		stats.AverageOrderValue = orderStats.TotalValue / float64(orderStats.Total)
	}
	return stats, nil
}

// MonthlyTrends returns one activity bucket per calendar month, oldest first,
// ending with the current month. Contracts are bucketed by creation date,
// orders by order date; volume and revenue sum every order in the bucket
// regardless of status.
func (s *DashboardService) MonthlyTrends(ctx context.Context, months int) ([]model.MonthlyTrend, error) {
	if months <= 0 {
		months = 6
	}
	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	trends := make([]model.MonthlyTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		contracts, err := s.repo.CountContractsCreatedBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		orders, volume, revenue, err := s.repo.OrderActivityBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}

		trends = append(trends, model.MonthlyTrend{
			Month:     start.Format("Jan 2006"),
			Contracts: contracts,
			Orders:    orders,
			Volume:    volume,
			Revenue:   revenue,
		})
	}
	return trends, nil
}

func (s *DashboardService) Recent(ctx context.Context, limit int) (*model.RecentActivity, error) {
	contracts, err := s.contracts.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &model.RecentActivity{Contracts: contracts, Orders: orders}, nil
}
