package repository

import (
	"context"

	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID string) (*model.Customer, error)
	// FindAddress resolves an order's address reference against the owning
	// customer's address collection.
	FindAddress(ctx context.Context, customerID, addressID string) (*model.Address, error)
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) FindByID(ctx context.Context, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Preload("Addresses").
		Where("id = ?", customerID).
		First(&customer).Error

	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepoImpl) FindAddress(ctx context.Context, customerID, addressID string) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		First(&address).Error

	if err != nil {
		return nil, err
	}

	return &address, nil
}
