package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/service"
)

// Store is the PostgreSQL implementation of the ledger's Repository.
type Store struct {
	db *gorm.DB
}

var _ service.Repository = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomic runs fn against a Store bound to a single database transaction.
// Contract reads inside use FOR UPDATE, so lifecycle transitions serialize
// per contract.
func (s *Store) Atomic(ctx context.Context, fn func(tx service.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
