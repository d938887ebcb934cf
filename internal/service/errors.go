package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrVolumeExceeded    = errors.New("volume exceeds pending volume")
	ErrInvalidTransition = errors.New("operation not allowed in current status")
	ErrDataInconsistency = errors.New("ledger volumes inconsistent")
)

// mapStoreErr turns a missing-record storage error into ErrNotFound tagged
// with the entity name; everything else passes through.
func mapStoreErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
