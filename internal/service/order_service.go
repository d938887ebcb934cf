package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

// OrderService owns purchase-order creation and every status transition,
// keeping the parent contract's volume fields consistent through
// ContractService's guarded volume path.
type OrderService struct {
	repo      Repository
	contracts *ContractService
	log       zerolog.Logger
	now       func() time.Time
}

func NewOrderService(repo Repository, contracts *ContractService, log zerolog.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		contracts: contracts,
		log:       log,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	ContractID   int64
	Volume       float64
	Price        float64
	OrderDate    time.Time
	DeliveryDate *time.Time
	Notes        string
}

type UpdateOrderInput struct {
	Volume       *float64
	Price        *float64
	OrderDate    *time.Time
	DeliveryDate *time.Time
	Notes        *string
}

// Create inserts a pending order and commits its volume against the
// contract. The order volume must fit in the contract's pending volume.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*model.PurchaseOrder, error) {
	if input.Volume <= 0 {
		return nil, fmt.Errorf("%w: order volume must be positive", ErrInvalidInput)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: order price must not be negative", ErrInvalidInput)
	}

	var order *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		contract, err := tx.GetContractForUpdate(ctx, input.ContractID)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		if input.Volume > contract.PendingVolume {
			return fmt.Errorf("%w: order volume %.3f exceeds pending volume %.3f of contract %s",
				ErrVolumeExceeded, input.Volume, contract.PendingVolume, contract.CorrelativeNumber)
		}

		orderDate := input.OrderDate
		if orderDate.IsZero() {
			orderDate = s.now()
		}
		order = &model.PurchaseOrder{
			ContractID:   input.ContractID,
			Volume:       input.Volume,
			Price:        input.Price,
			OrderDate:    orderDate,
			DeliveryDate: input.DeliveryDate,
			Status:       model.OrderStatusPending,
			Notes:        input.Notes,
		}
		id, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id

		return s.contracts.applyVolumeDelta(ctx, tx, input.ContractID, input.Volume)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int64("contract_id", order.ContractID).
		Float64("volume", order.Volume).
		Msg("purchase order created")
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "order")
	}
	return order, nil
}

// Update edits a pending order. A volume change moves the difference through
// the contract's guarded volume path; a shrinking order releases volume back.
func (s *OrderService) Update(ctx context.Context, id int64, input UpdateOrderInput) (*model.PurchaseOrder, error) {
	var updated *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be edited", ErrInvalidTransition)
		}

		if input.Volume != nil && *input.Volume != order.Volume {
			if *input.Volume <= 0 {
				return fmt.Errorf("%w: order volume must be positive", ErrInvalidInput)
			}
			contract, err := tx.GetContractForUpdate(ctx, order.ContractID)
			if err != nil {
				return mapStoreErr(err, "contract")
			}
			delta := *input.Volume - order.Volume
			if delta > contract.PendingVolume {
				return fmt.Errorf("%w: volume increase %.3f exceeds pending volume %.3f of contract %s",
					ErrVolumeExceeded, delta, contract.PendingVolume, contract.CorrelativeNumber)
			}
			if err := s.contracts.applyVolumeDelta(ctx, tx, order.ContractID, delta); err != nil {
				return err
			}
			order.Volume = *input.Volume
		}
		if input.Price != nil {
			order.Price = *input.Price
		}
		if input.OrderDate != nil {
			order.OrderDate = *input.OrderDate
		}
		if input.DeliveryDate != nil {
			order.DeliveryDate = input.DeliveryDate
		}
		if input.Notes != nil {
			order.Notes = *input.Notes
		}

		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel releases the order's volume back to the contract and marks it
// cancelled. Delivered orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, id int64, reason string) (*model.PurchaseOrder, error) {
	var cancelled *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		switch order.Status {
		case model.OrderStatusCancelled:
			return fmt.Errorf("%w: order is already cancelled", ErrInvalidTransition)
		case model.OrderStatusDelivered:
			return fmt.Errorf("%w: cannot cancel a delivered order", ErrInvalidTransition)
		}

		if err := s.contracts.applyVolumeDelta(ctx, tx, order.ContractID, -order.Volume); err != nil {
			return err
		}

		order.Status = model.OrderStatusCancelled
		order.Notes = appendCancelReason(order.Notes, reason)
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// MarkDelivered moves a pending order to delivered. The order's volume was
// already attended at creation time, so only the contract status is
// re-derived.
func (s *OrderService) MarkDelivered(ctx context.Context, id int64, deliveryDate *time.Time) (*model.PurchaseOrder, error) {
	var delivered *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be delivered", ErrInvalidTransition)
		}

		when := s.now()
		if deliveryDate != nil {
			when = *deliveryDate
		}
		order.Status = model.OrderStatusDelivered
		order.DeliveryDate = &when
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		delivered = order

		_, _, err = s.contracts.deriveStatus(ctx, tx, order.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return delivered, nil
}

// MarkCancelled cancels a pending order from the status dialog path. When the
// contract's attended volume cannot cover the order, the ledger is first
// reconciled from the actual orders and the check retried once.
func (s *OrderService) MarkCancelled(ctx context.Context, id int64, reason string) (*model.PurchaseOrder, error) {
	var cancelled *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidTransition)
		}

		contract, err := tx.GetContractForUpdate(ctx, order.ContractID)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		if contract.AttendedVolume < order.Volume {
			s.log.Warn().
				Int64("contract_id", contract.ID).
				Float64("attended", contract.AttendedVolume).
				Float64("order_volume", order.Volume).
				Msg("volume inconsistency detected, reconciling")
			if err := s.reconcile(ctx, tx, order.ContractID); err != nil {
				return err
			}
			contract, err = tx.GetContractForUpdate(ctx, order.ContractID)
			if err != nil {
				return mapStoreErr(err, "contract")
			}
			if contract.AttendedVolume < order.Volume {
				return fmt.Errorf("%w: contract %s attended volume %.3f cannot cover order volume %.3f after reconciliation",
					ErrDataInconsistency, contract.CorrelativeNumber, contract.AttendedVolume, order.Volume)
			}
		}

		if err := s.contracts.applyVolumeDelta(ctx, tx, order.ContractID, -order.Volume); err != nil {
			return err
		}

		order.Status = model.OrderStatusCancelled
		order.Notes = appendCancelReason(order.Notes, reason)
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		cancelled = order

		_, _, err = s.contracts.deriveStatus(ctx, tx, order.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Reactivate returns a cancelled order to pending, recommitting its volume
// through the guarded path.
func (s *OrderService) Reactivate(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	var reactivated *model.PurchaseOrder
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		if order.Status != model.OrderStatusCancelled {
			return fmt.Errorf("%w: only cancelled orders can be reactivated", ErrInvalidTransition)
		}

		contract, err := tx.GetContractForUpdate(ctx, order.ContractID)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		if contract.PendingVolume < order.Volume {
			return fmt.Errorf("%w: contract %s has %.3f pending volume, order needs %.3f",
				ErrVolumeExceeded, contract.CorrelativeNumber, contract.PendingVolume, order.Volume)
		}

		if err := s.contracts.applyVolumeDelta(ctx, tx, order.ContractID, order.Volume); err != nil {
			return err
		}

		order.Status = model.OrderStatusPending
		order.DeliveryDate = nil
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		reactivated = order

		_, _, err = s.contracts.deriveStatus(ctx, tx, order.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reactivated, nil
}

// Delete removes the order record. Active (pending or delivered) orders
// release their volume back to the contract first.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return mapStoreErr(err, "order")
		}
		if order.Status == model.OrderStatusPending || order.Status == model.OrderStatusDelivered {
			if err := s.contracts.applyVolumeDelta(ctx, tx, order.ContractID, -order.Volume); err != nil {
				return err
			}
		}
		return tx.DeleteOrder(ctx, id)
	})
}

// Reconcile recomputes a contract's volume fields from the actual sum of its
// pending and delivered orders. Defensive repair, not a guarantee.
func (s *OrderService) Reconcile(ctx context.Context, contractID int64) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		return s.reconcile(ctx, tx, contractID)
	})
}

func (s *OrderService) reconcile(ctx context.Context, tx Repository, contractID int64) error {
	contract, err := tx.GetContractForUpdate(ctx, contractID)
	if err != nil {
		return mapStoreErr(err, "contract")
	}
	orders, err := tx.ListOrdersByContract(ctx, contractID)
	if err != nil {
		return err
	}

	attended := 0.0
	for _, order := range orders {
		if order.Status == model.OrderStatusPending || order.Status == model.OrderStatusDelivered {
			attended += order.Volume
		}
	}

	s.log.Info().
		Int64("contract_id", contractID).
		Float64("stored_attended", contract.AttendedVolume).
		Float64("computed_attended", attended).
		Msg("contract volumes reconciled")
	return tx.UpdateContractVolumes(ctx, contractID, attended, contract.TotalVolume-attended)
}

// List returns all orders, newest first, enriched with parent contract
// display fields where the contract still resolves.
func (s *OrderService) List(ctx context.Context) ([]model.OrderWithContract, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

func (s *OrderService) ListByContract(ctx context.Context, contractID int64) ([]model.PurchaseOrder, error) {
	return s.repo.ListOrdersByContract(ctx, contractID)
}

func (s *OrderService) Recent(ctx context.Context, limit int) ([]model.OrderWithContract, error) {
	if limit <= 0 {
		limit = 5
	}
	orders, err := s.repo.ListRecentOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

func (s *OrderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	return s.repo.OrderStats(ctx)
}

// Search filters the enriched order list by correlative number, client name,
// status or notes.
func (s *OrderService) Search(ctx context.Context, query string) ([]model.OrderWithContract, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return orders, nil
	}

	matched := make([]model.OrderWithContract, 0, len(orders))
	for _, order := range orders {
		if strings.Contains(strings.ToLower(string(order.Status)), q) ||
			strings.Contains(strings.ToLower(order.Notes), q) {
			matched = append(matched, order)
			continue
		}
		if order.Contract != nil &&
			(strings.Contains(strings.ToLower(order.Contract.CorrelativeNumber), q) ||
				strings.Contains(strings.ToLower(order.Contract.ClientName), q)) {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

// CanCancel reports whether the order may still be cancelled.
func (s *OrderService) CanCancel(order *model.PurchaseOrder) bool {
	return order.Status == model.OrderStatusPending
}

// CanEdit reports whether the order may still be edited.
func (s *OrderService) CanEdit(order *model.PurchaseOrder) bool {
	return order.Status == model.OrderStatusPending
}

func (s *OrderService) enrich(ctx context.Context, orders []model.PurchaseOrder) ([]model.OrderWithContract, error) {
	result := make([]model.OrderWithContract, 0, len(orders))
	for _, order := range orders {
		enriched := model.OrderWithContract{PurchaseOrder: order}

		contract, err := s.repo.GetContract(ctx, order.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = append(result, enriched)
				continue
			}
			return nil, err
		}

		info := &model.OrderContractInfo{
			CorrelativeNumber: contract.CorrelativeNumber,
			PendingVolume:     contract.PendingVolume,
			ClientName:        "unknown client",
		}
		if client, err := s.repo.GetClient(ctx, contract.ClientID); err == nil {
			info.ClientName = client.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		enriched.Contract = info
		result = append(result, enriched)
	}
	return result, nil
}

func appendCancelReason(notes, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return notes
	}
	return strings.TrimSpace(notes + "\n[CANCELLED: " + reason + "]")
}
