package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist in the caller's store.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
	// ErrStockConflict is returned when stock ran out while an order was being placed.
	ErrStockConflict = errors.New("stock changed during checkout")
)

// wrap converts gorm errors into repository sentinels.
func wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// deleteScoped removes the record with the given id from a store.
func deleteScoped(db *gorm.DB, model any, storeID, id, what string) error {
	res := db.Where("store_id = ? AND id = ?", storeID, id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", what, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found for deletion: %w", what, id, ErrNotFound)
	}
	return nil
}

// updateScoped saves a record that must already exist in its store. The
// creation time is never overwritten and model is reloaded from the row.
func updateScoped(db *gorm.DB, model any, storeID, id, what string) error {
	var count int64
	if err := db.Model(model).Where("store_id = ? AND id = ?", storeID, id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if count == 0 {
		return fmt.Errorf("%s with ID %s not found for update: %w", what, id, ErrNotFound)
	}
	if err := db.Omit("created_at").Save(model).Error; err != nil {
		return wrap(err, "failed to update %s", what)
	}
	return wrap(db.Where("store_id = ? AND id = ?", storeID, id).First(model).Error, "failed to reload %s", what)
}
