package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

func (s *Store) CreateClient(ctx context.Context, client *model.Client) (int64, error) {
	var id int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO clients (name, email, phone, address)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, client.Name, client.Email, client.Phone, client.Address).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	var client model.Client
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM clients
		WHERE id = ?
	`, id).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM clients
		ORDER BY name ASC
	`).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *model.Client) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE clients
		SET name = ?, email = ?, phone = ?, address = ?, updated_at = NOW()
		WHERE id = ?
	`, client.Name, client.Email, client.Phone, client.Address, client.ID).Error
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Exec(`DELETE FROM clients WHERE id = ?`, id).Error
}

func (s *Store) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM clients`).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CountContractsByClient(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts WHERE client_id = ?
	`, clientID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
