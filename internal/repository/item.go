package repository

import (
	"context"
	"fmt"

	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"gorm.io/gorm"
)

// InsufficientStockError reports the first line that could not be reserved.
type InsufficientStockError struct {
	ItemID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s", e.ItemID)
}

type ReservationLine struct {
	ItemID   string
	Quantity int
}

type ItemRepository interface {
	FindMany(ctx context.Context, itemIDs []string) ([]*model.Item, error)
	// Reserve atomically decrements stock for every line or none of them.
	// Must be called inside a transaction; the guarded update makes each
	// decrement conditional on remaining stock so concurrent orders cannot
	// both pass a check only one can satisfy.
	Reserve(ctx context.Context, tx *gorm.DB, lines []ReservationLine) error
	Restock(ctx context.Context, tx *gorm.DB, lines []ReservationLine) error
}

type itemRepoImpl struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepoImpl{
		db: db,
	}
}

func (r *itemRepoImpl) FindMany(ctx context.Context, itemIDs []string) ([]*model.Item, error) {
	var items []*model.Item
	err := r.db.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&items).
		Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *itemRepoImpl) Reserve(ctx context.Context, tx *gorm.DB, lines []ReservationLine) error {
	for _, line := range lines {
		result := tx.WithContext(ctx).Model(&model.Item{}).
			Where("id = ? AND stock_qty >= ?", line.ItemID, line.Quantity).
			Update("stock_qty", gorm.Expr("stock_qty - ?", line.Quantity))

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Returning an error rolls the enclosing transaction back, so
			// decrements already applied for earlier lines are discarded.
			return &InsufficientStockError{ItemID: line.ItemID}
		}
	}

	return nil
}

func (r *itemRepoImpl) Restock(ctx context.Context, tx *gorm.DB, lines []ReservationLine) error {
	for _, line := range lines {
		err := tx.WithContext(ctx).Model(&model.Item{}).
			Where("id = ?", line.ItemID).
			Update("stock_qty", gorm.Expr("stock_qty + ?", line.Quantity)).
			Error
		if err != nil {
			return err
		}
	}

	return nil
}
