package repository

import (
	"context"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"gorm.io/gorm"
)

// OrderRepository owns every order-state write. Payment transitions are
// single-statement conditional updates keyed on the prior payment_status, so
// racing channels cannot both apply the same transition: whichever statement
// matches zero rows lost the race and must treat the order as already
// settled.
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error)

	MarkPaid(ctx context.Context, orderID string) (bool, error)
	MarkFailed(ctx context.Context, orderID string) (bool, error)
	MarkCancelled(ctx context.Context, orderID string) (bool, error)
	UpdateStatus(ctx context.Context, orderID, status string) error

	AppendPaymentAttempt(ctx context.Context, attempt *model.PaymentAttempt) error
	GetPaymentAttempts(ctx context.Context, orderID string) ([]*model.PaymentAttempt, error)

	SetShipmentCreated(ctx context.Context, orderID, waybill, deliveryStatus string) error
	RecordShipmentFailure(ctx context.Context, orderID, reason string) error
	FindNeedingShipment(ctx context.Context, maxAttempts int) ([]*model.Order, error)
	FindNeedingIntervention(ctx context.Context, maxAttempts int) ([]*model.Order, error)

	FindInconsistent(ctx context.Context) ([]*model.Order, error)
	RepairConfirmed(ctx context.Context, orderID string) error

	List(ctx context.Context, filter ListFilter, page, limit int) ([]*model.Order, int64, error)
	FindStalePending(ctx context.Context, before time.Time) ([]*model.Order, error)
	DeleteWithChildren(ctx context.Context, tx *gorm.DB, orderID string) error
}

type ListFilter struct {
	Successful bool
	Failed     bool
	CustomerID string
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("provider_order_id = ?", providerOrderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// MarkPaid applies pending -> paid/confirmed. Returns false when the guard
// matched no row, i.e. another channel already settled the order.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentPaid,
			"status":         model.OrderConfirmed,
			"confirmed_at":   time.Now(),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkFailed only fires from pending, so a stale failure delivered after a
// successful capture can never clobber the paid verdict.
func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentFailed,
			"status":         model.OrderFailed,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status NOT IN ?", orderID,
			[]string{model.PaymentPaid, model.PaymentCancelled}).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentCancelled,
			"status":         model.OrderCancelled,
			"cancelled_at":   time.Now(),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID, status string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) AppendPaymentAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *orderRepoImpl) GetPaymentAttempts(ctx context.Context, orderID string) ([]*model.PaymentAttempt, error) {
	var attempts []*model.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&attempts).Error

	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *orderRepoImpl) SetShipmentCreated(ctx context.Context, orderID, waybill, deliveryStatus string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"waybill":             waybill,
			"delivery_status":     deliveryStatus,
			"status":              model.OrderShipped,
			"shipment_attempts":   gorm.Expr("shipment_attempts + 1"),
			"shipment_last_error": "",
			"updated_at":          time.Now(),
		}).Error
}

func (r *orderRepoImpl) RecordShipmentFailure(ctx context.Context, orderID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"shipment_attempts":   gorm.Expr("shipment_attempts + 1"),
			"shipment_last_error": reason,
			"updated_at":          time.Now(),
		}).Error
}

func (r *orderRepoImpl) FindNeedingShipment(ctx context.Context, maxAttempts int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("delivery_provider = ?", model.ProviderCourier).
		Where("payment_status = ? AND status = ?", model.PaymentPaid, model.OrderConfirmed).
		Where("waybill = ''").
		Where("shipment_attempts < ?", maxAttempts).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindNeedingIntervention(ctx context.Context, maxAttempts int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("delivery_provider = ?", model.ProviderCourier).
		Where("payment_status = ? AND status = ?", model.PaymentPaid, model.OrderConfirmed).
		Where("waybill = ''").
		Where("shipment_attempts >= ?", maxAttempts).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// FindInconsistent returns orders violating the confirmed/cancelled
// exclusivity invariant.
func (r *orderRepoImpl) FindInconsistent(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("confirmed_at IS NOT NULL AND cancelled_at IS NOT NULL").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) RepairConfirmed(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         model.OrderConfirmed,
			"payment_status": model.PaymentPaid,
			"cancelled_at":   nil,
			"updated_at":     time.Now(),
		}).Error
}

func (r *orderRepoImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]*model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Successful {
		query = query.
			Where("status IN ?", []string{model.OrderConfirmed, model.OrderShipped, model.OrderDelivered}).
			Where("payment_status = ?", model.PaymentPaid)
	}
	if filter.Failed {
		query = query.Where(
			r.db.Where("status IN ?", []string{model.OrderFailed, model.OrderCancelled}).
				Or("payment_status = ?", model.PaymentFailed),
		)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepoImpl) FindStalePending(ctx context.Context, before time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ?", model.OrderPending, model.PaymentPending).
		Where("created_at < ?", before).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) DeleteWithChildren(ctx context.Context, tx *gorm.DB, orderID string) error {
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.PaymentAttempt{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{}).Error
}
