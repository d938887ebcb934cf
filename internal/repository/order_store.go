package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

const orderColumns = `
	id,
	contract_id,
	volume,
	price,
	order_date,
	delivery_date,
	status,
	notes,
	created_at,
	updated_at
`

func (s *Store) CreateOrder(ctx context.Context, order *model.PurchaseOrder) (int64, error) {
	var id int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO purchase_orders (
			contract_id,
			volume,
			price,
			order_date,
			delivery_date,
			status,
			notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		order.ContractID,
		order.Volume,
		order.Price,
		order.OrderDate,
		order.DeliveryDate,
		order.Status,
		order.Notes,
	).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM purchase_orders
		WHERE id = ?
	`, id).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := s.db.WithContext(ctx).Raw(`
		SELECT ` + orderColumns + `
		FROM purchase_orders
		ORDER BY created_at DESC
	`).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) ListOrdersByContract(ctx context.Context, contractID int64) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM purchase_orders
		WHERE contract_id = ?
		ORDER BY created_at DESC
	`, contractID).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) ListRecentOrders(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM purchase_orders
		ORDER BY created_at DESC
		LIMIT ?
	`, limit).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *model.PurchaseOrder) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE purchase_orders
		SET
			volume = ?,
			price = ?,
			order_date = ?,
			delivery_date = ?,
			status = ?,
			notes = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		order.Volume,
		order.Price,
		order.OrderDate,
		order.DeliveryDate,
		order.Status,
		order.Notes,
		order.ID,
	).Error
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Exec(`DELETE FROM purchase_orders WHERE id = ?`, id).Error
}

func (s *Store) OrderStats(ctx context.Context) (*model.OrderStats, error) {
	var stats model.OrderStats
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(volume), 0) AS total_volume,
			COALESCE(SUM(volume * price), 0) AS total_value
		FROM purchase_orders
	`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Store) OrderActivitySince(ctx context.Context, from time.Time) (int64, float64, error) {
	var row struct {
		Count   int64
		Revenue float64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS count,
			COALESCE(SUM(volume * price) FILTER (WHERE status <> 'cancelled'), 0) AS revenue
		FROM purchase_orders
		WHERE order_date >= ?
	`, from).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Revenue, nil
}

func (s *Store) OrderActivityBetween(ctx context.Context, from, to time.Time) (int64, float64, float64, error) {
	var row struct {
		Count   int64
		Volume  float64
		Revenue float64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS count,
			COALESCE(SUM(volume), 0) AS volume,
			COALESCE(SUM(volume * price), 0) AS revenue
		FROM purchase_orders
		WHERE order_date >= ? AND order_date < ?
	`, from, to).Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return row.Count, row.Volume, row.Revenue, nil
}
