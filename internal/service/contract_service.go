package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ovapp/sales-ledger/internal/model"
)

type VolumeOp string

const (
	VolumeAdd      VolumeOp = "add"
	VolumeSubtract VolumeOp = "subtract"
)

// ContractService owns contract creation, correlative-number assignment,
// edit/delete gating, volume bookkeeping and status derivation.
type ContractService struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewContractService(repo Repository, log zerolog.Logger) *ContractService {
	return &ContractService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

type CreateContractInput struct {
	ClientID    int64
	TotalVolume float64
	SalePrice   float64
	StartDate   time.Time
	EndDate     time.Time
	Status      model.ContractStatus
}

type UpdateContractInput struct {
	TotalVolume *float64
	SalePrice   *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *model.ContractStatus
}

// Create assigns the next correlative number and opens the contract with the
// full volume pending. Client existence is the caller's concern.
func (s *ContractService) Create(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if input.TotalVolume <= 0 {
		return nil, fmt.Errorf("%w: total volume must be positive", ErrInvalidInput)
	}
	if input.SalePrice < 0 {
		return nil, fmt.Errorf("%w: sale price must not be negative", ErrInvalidInput)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	status := input.Status
	if status == "" {
		status = model.ContractStatusActive
	}
	if !validContractStatus(status) {
		return nil, fmt.Errorf("%w: unknown contract status %q", ErrInvalidInput, status)
	}

	var contract *model.Contract
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		last, err := tx.MaxCorrelativeNumber(ctx)
		if err != nil {
			return err
		}
		correlative, err := nextCorrelativeNumber(last)
		if err != nil {
			return err
		}

		contract = &model.Contract{
			CorrelativeNumber: correlative,
			ClientID:          input.ClientID,
			TotalVolume:       input.TotalVolume,
			AttendedVolume:    0,
			PendingVolume:     input.TotalVolume,
			SalePrice:         input.SalePrice,
			StartDate:         input.StartDate,
			EndDate:           input.EndDate,
			Status:            status,
		}
		id, err := tx.CreateContract(ctx, contract)
		if err != nil {
			return err
		}
		contract.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("contract_id", contract.ID).
		Str("correlative", contract.CorrelativeNumber).
		Float64("total_volume", contract.TotalVolume).
		Msg("contract created")
	return contract, nil
}

func (s *ContractService) Get(ctx context.Context, id int64) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "contract")
	}
	return contract, nil
}

func (s *ContractService) List(ctx context.Context) ([]model.Contract, error) {
	return s.repo.ListContracts(ctx)
}

func (s *ContractService) ListByClient(ctx context.Context, clientID int64) ([]model.Contract, error) {
	return s.repo.ListContractsByClient(ctx, clientID)
}

func (s *ContractService) Recent(ctx context.Context, limit int) ([]model.ContractWithClient, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.ListRecentContracts(ctx, limit)
}

func (s *ContractService) Stats(ctx context.Context) (*model.ContractStats, error) {
	return s.repo.ContractStats(ctx)
}

// Update edits contract fields. A contract with any order on record, whatever
// that order's status, is frozen: volume history would no longer reconcile.
// When TotalVolume changes, PendingVolume is recomputed against the attended
// volume as is.
func (s *ContractService) Update(ctx context.Context, id int64, input UpdateContractInput) (*model.Contract, error) {
	var updated *model.Contract
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		contract, err := tx.GetContractForUpdate(ctx, id)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		orders, err := tx.CountOrdersByContract(ctx, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return fmt.Errorf("%w: contract %s has associated orders", ErrInvalidTransition, contract.CorrelativeNumber)
		}

		if input.TotalVolume != nil {
			if *input.TotalVolume <= 0 {
				return fmt.Errorf("%w: total volume must be positive", ErrInvalidInput)
			}
			contract.TotalVolume = *input.TotalVolume
			contract.PendingVolume = contract.TotalVolume - contract.AttendedVolume
		}
		if input.SalePrice != nil {
			contract.SalePrice = *input.SalePrice
		}
		if input.StartDate != nil {
			contract.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			contract.EndDate = *input.EndDate
		}
		if input.Status != nil {
			if !validContractStatus(*input.Status) {
				return fmt.Errorf("%w: unknown contract status %q", ErrInvalidInput, *input.Status)
			}
			contract.Status = *input.Status
		}

		if err := tx.UpdateContract(ctx, contract); err != nil {
			return err
		}
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a contract. Rejected while any order references it.
func (s *ContractService) Delete(ctx context.Context, id int64) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		contract, err := tx.GetContractForUpdate(ctx, id)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		orders, err := tx.CountOrdersByContract(ctx, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return fmt.Errorf("%w: contract %s has associated orders", ErrInvalidTransition, contract.CorrelativeNumber)
		}
		return tx.DeleteContract(ctx, id)
	})
}

// AdjustVolumes moves volume between attended and pending. This is the only
// mutation path for the volume fields once a contract has orders.
func (s *ContractService) AdjustVolumes(ctx context.Context, contractID int64, volume float64, op VolumeOp) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		delta := volume
		if op == VolumeSubtract {
			delta = -volume
		}
		return s.applyVolumeDelta(ctx, tx, contractID, delta)
	})
}

// applyVolumeDelta shifts attended volume by delta inside the caller's
// transaction, keeping attended within [0, total].
func (s *ContractService) applyVolumeDelta(ctx context.Context, tx Repository, contractID int64, delta float64) error {
	contract, err := tx.GetContractForUpdate(ctx, contractID)
	if err != nil {
		return mapStoreErr(err, "contract")
	}

	attended := contract.AttendedVolume + delta
	if attended < 0 {
		return fmt.Errorf("%w: attended volume would drop to %.3f on contract %s",
			ErrDataInconsistency, attended, contract.CorrelativeNumber)
	}
	if attended > contract.TotalVolume {
		return fmt.Errorf("%w: attended volume %.3f exceeds total volume %.3f on contract %s",
			ErrVolumeExceeded, attended, contract.TotalVolume, contract.CorrelativeNumber)
	}

	return tx.UpdateContractVolumes(ctx, contractID, attended, contract.TotalVolume-attended)
}

// DeriveStatus recomputes the contract status from its orders and expiry
// date. The second return reports whether a write happened; deriving twice
// without an intervening order change is a no-op.
func (s *ContractService) DeriveStatus(ctx context.Context, contractID int64) (model.ContractStatus, bool, error) {
	var (
		status  model.ContractStatus
		changed bool
	)
	err := s.repo.Atomic(ctx, func(tx Repository) error {
		var err error
		status, changed, err = s.deriveStatus(ctx, tx, contractID)
		return err
	})
	return status, changed, err
}

func (s *ContractService) deriveStatus(ctx context.Context, tx Repository, contractID int64) (model.ContractStatus, bool, error) {
	contract, err := tx.GetContractForUpdate(ctx, contractID)
	if err != nil {
		return "", false, mapStoreErr(err, "contract")
	}
	orders, err := tx.ListOrdersByContract(ctx, contractID)
	if err != nil {
		return "", false, err
	}

	next := deriveContractStatus(contract, orders, s.now())
	if next == contract.Status {
		return next, false, nil
	}
	if err := tx.UpdateContractStatus(ctx, contractID, next); err != nil {
		return "", false, err
	}
	s.log.Info().
		Str("correlative", contract.CorrelativeNumber).
		Str("from", string(contract.Status)).
		Str("to", string(next)).
		Msg("contract status changed")
	return next, true, nil
}

// deriveContractStatus is the status decision table. Pending orders keep a
// contract active even past its end date; a fully delivered volume completes
// it; an expired shortfall cancels it.
func deriveContractStatus(contract *model.Contract, orders []model.PurchaseOrder, now time.Time) model.ContractStatus {
	expired := now.After(contract.EndDate)

	if len(orders) == 0 {
		if expired {
			return model.ContractStatusCancelled
		}
		return model.ContractStatusActive
	}

	var (
		pendingCount    int
		deliveredCount  int
		deliveredVolume float64
	)
	for _, order := range orders {
		switch order.Status {
		case model.OrderStatusPending:
			pendingCount++
		case model.OrderStatusDelivered:
			deliveredCount++
			deliveredVolume += order.Volume
		}
	}

	if pendingCount > 0 {
		return model.ContractStatusActive
	}
	if deliveredCount > 0 {
		if deliveredVolume >= contract.TotalVolume {
			return model.ContractStatusCompleted
		}
		if expired {
			return model.ContractStatusCancelled
		}
		return model.ContractStatusActive
	}

	// Only cancelled orders remain.
	if expired {
		return model.ContractStatusCancelled
	}
	return model.ContractStatusActive
}

// RefreshAllStatuses re-derives every contract's status and returns how many
// changed. The status scheduler calls this periodically; it is idempotent.
func (s *ContractService) RefreshAllStatuses(ctx context.Context) (int, error) {
	contracts, err := s.repo.ListContracts(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, contract := range contracts {
		if _, ok, err := s.DeriveStatus(ctx, contract.ID); err != nil {
			return changed, fmt.Errorf("refresh contract %d: %w", contract.ID, err)
		} else if ok {
			changed++
		}
	}
	return changed, nil
}

// ManualCancel force-cancels a contract. Pending orders must be cancelled
// first.
func (s *ContractService) ManualCancel(ctx context.Context, contractID int64, reason string) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		contract, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		orders, err := tx.ListOrdersByContract(ctx, contractID)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if order.Status == model.OrderStatusPending {
				return fmt.Errorf("%w: contract %s has pending orders", ErrInvalidTransition, contract.CorrelativeNumber)
			}
		}
		if err := tx.UpdateContractStatus(ctx, contractID, model.ContractStatusCancelled); err != nil {
			return err
		}
		s.log.Info().
			Str("correlative", contract.CorrelativeNumber).
			Str("reason", reason).
			Msg("contract cancelled manually")
		return nil
	})
}

// ManualReactivate returns a cancelled, non-expired contract to active.
func (s *ContractService) ManualReactivate(ctx context.Context, contractID int64) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		contract, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return mapStoreErr(err, "contract")
		}
		if contract.Status != model.ContractStatusCancelled {
			return fmt.Errorf("%w: only cancelled contracts can be reactivated", ErrInvalidTransition)
		}
		if s.now().After(contract.EndDate) {
			return fmt.Errorf("%w: contract %s has expired, extend the end date first",
				ErrInvalidTransition, contract.CorrelativeNumber)
		}
		return tx.UpdateContractStatus(ctx, contractID, model.ContractStatusActive)
	})
}

// CanEdit reports whether the contract has no order history yet.
func (s *ContractService) CanEdit(ctx context.Context, contractID int64) (bool, error) {
	count, err := s.repo.CountOrdersByContract(ctx, contractID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// nextCorrelativeNumber increments the highest assigned correlative number,
// zero-padded to six digits. Numbers are never reused.
func nextCorrelativeNumber(last string) (string, error) {
	if last == "" {
		return "000001", nil
	}
	n, err := strconv.Atoi(last)
	if err != nil {
		return "", fmt.Errorf("parse correlative number %q: %w", last, err)
	}
	return fmt.Sprintf("%06d", n+1), nil
}

func validContractStatus(status model.ContractStatus) bool {
	switch status {
	case model.ContractStatusActive, model.ContractStatusCompleted, model.ContractStatusCancelled:
		return true
	}
	return false
}
