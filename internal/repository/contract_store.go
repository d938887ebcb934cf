package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

const contractColumns = `
	id,
	correlative_number,
	client_id,
	total_volume,
	attended_volume,
	pending_volume,
	sale_price,
	start_date,
	end_date,
	status,
	created_at,
	updated_at
`

func (s *Store) CreateContract(ctx context.Context, contract *model.Contract) (int64, error) {
	var id int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (
			correlative_number,
			client_id,
			total_volume,
			attended_volume,
			pending_volume,
			sale_price,
			start_date,
			end_date,
			status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		contract.CorrelativeNumber,
		contract.ClientID,
		contract.TotalVolume,
		contract.AttendedVolume,
		contract.PendingVolume,
		contract.SalePrice,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
	).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	return s.getContract(ctx, id, "")
}

func (s *Store) GetContractForUpdate(ctx context.Context, id int64) (*model.Contract, error) {
	return s.getContract(ctx, id, " FOR UPDATE")
}

func (s *Store) getContract(ctx context.Context, id int64, suffix string) (*model.Contract, error) {
	var contract model.Contract
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE id = ?`+suffix, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (s *Store) ListContracts(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	err := s.db.WithContext(ctx).Raw(`
		SELECT ` + contractColumns + `
		FROM contracts
		ORDER BY created_at DESC
	`).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (s *Store) ListContractsByClient(ctx context.Context, clientID int64) ([]model.Contract, error) {
	var contracts []model.Contract
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE client_id = ?
		ORDER BY created_at DESC
	`, clientID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (s *Store) ListRecentContracts(ctx context.Context, limit int) ([]model.ContractWithClient, error) {
	var rows []struct {
		model.Contract
		ClientName  string
		ClientEmail string
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.correlative_number,
			c.client_id,
			c.total_volume,
			c.attended_volume,
			c.pending_volume,
			c.sale_price,
			c.start_date,
			c.end_date,
			c.status,
			c.created_at,
			c.updated_at,
			COALESCE(cl.name, 'unknown client') AS client_name,
			COALESCE(cl.email, '') AS client_email
		FROM contracts c
		LEFT JOIN clients cl ON cl.id = c.client_id
		ORDER BY c.created_at DESC
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	contracts := make([]model.ContractWithClient, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, model.ContractWithClient{
			Contract:    row.Contract,
			ClientName:  row.ClientName,
			ClientEmail: row.ClientEmail,
		})
	}
	return contracts, nil
}

func (s *Store) MaxCorrelativeNumber(ctx context.Context) (string, error) {
	// Numbers are zero-padded to six digits but may grow longer; ordering by
	// length first keeps "1000000" above "999999".
	var last *string
	err := s.db.WithContext(ctx).Raw(`
		SELECT correlative_number
		FROM contracts
		ORDER BY length(correlative_number) DESC, correlative_number DESC
		LIMIT 1
	`).Scan(&last).Error
	if err != nil {
		return "", err
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

func (s *Store) UpdateContract(ctx context.Context, contract *model.Contract) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET
			total_volume = ?,
			attended_volume = ?,
			pending_volume = ?,
			sale_price = ?,
			start_date = ?,
			end_date = ?,
			status = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		contract.TotalVolume,
		contract.AttendedVolume,
		contract.PendingVolume,
		contract.SalePrice,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
		contract.ID,
	).Error
}

func (s *Store) UpdateContractVolumes(ctx context.Context, id int64, attended, pending float64) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET attended_volume = ?, pending_volume = ?, updated_at = NOW()
		WHERE id = ?
	`, attended, pending, id).Error
}

func (s *Store) UpdateContractStatus(ctx context.Context, id int64, status model.ContractStatus) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET status = ?, updated_at = NOW()
		WHERE id = ?
	`, status, id).Error
}

func (s *Store) DeleteContract(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Exec(`DELETE FROM contracts WHERE id = ?`, id).Error
}

func (s *Store) CountOrdersByContract(ctx context.Context, contractID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM purchase_orders WHERE contract_id = ?
	`, contractID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CountContractsCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts WHERE created_at >= ? AND created_at < ?
	`, from, to).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ContractStats(ctx context.Context) (*model.ContractStats, error) {
	var stats model.ContractStats
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(total_volume), 0) AS total_volume,
			COALESCE(SUM(attended_volume), 0) AS attended_volume,
			COALESCE(SUM(pending_volume), 0) AS pending_volume,
			COALESCE(SUM(total_volume * sale_price), 0) AS total_value
		FROM contracts
	`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
