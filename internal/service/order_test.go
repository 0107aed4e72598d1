package service

import (
	"context"
	"testing"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderService(t *testing.T, db *gorm.DB, razorpay *fakeRazorpay, geo *fakeGeo, courier *fakeDelhivery) OrderService {
	t.Helper()

	return NewOrderService(
		db,
		&config.Cleanup{PendingTTL: 24 * time.Hour},
		razorpay,
		newTestRouter(geo, courier),
		repository.NewOrderRepository(db),
		repository.NewItemRepository(db),
		repository.NewCustomerRepository(db),
	)
}

func TestCreateOrderTotals(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "273004")
	seedItem(t, db, "gulab-jamun", 10000, 200, 10) // 100 rupees
	seedItem(t, db, "barfi", 5000, 200, 10)        // 50 rupees

	razorpay := newFakeRazorpay()
	// 1 km from base: distance and weight surcharges are both zero, so the
	// self-delivery charge is exactly the base rate of 30.
	svc := newOrderService(t, db, razorpay, &fakeGeo{distanceKm: 1}, &fakeDelhivery{})

	resp, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items: []*dto.OrderItemInput{
			{ItemID: "gulab-jamun", Quantity: 2},
			{ItemID: "barfi", Quantity: 1},
		},
	})
	require.NoError(t, err)

	// subtotal 250.00, tax 12.50, delivery 30.00 -> 292.50 = 29250 paise
	assert.Equal(t, int64(29250), resp.Amount)
	assert.Equal(t, int64(3000), resp.DeliveryFee)
	assert.Equal(t, model.ProviderSelf, resp.Provider)
	assert.Equal(t, int64(29250), razorpay.lastAmount)

	// stock reserved at placement
	var item model.Item
	require.NoError(t, db.First(&item, "id = ?", "gulab-jamun").Error)
	assert.Equal(t, 8, item.StockQty)

	// unit prices snapshotted onto the order
	var lines []model.OrderItem
	require.NoError(t, db.Where("order_id = ?", resp.OrderID).Find(&lines).Error)
	require.Len(t, lines, 2)
}

func TestCreateOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "273004")
	seedItem(t, db, "laddu", 10000, 200, 5)
	seedItem(t, db, "peda", 5000, 200, 1)

	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 1}, &fakeDelhivery{})

	_, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items: []*dto.OrderItemInput{
			{ItemID: "laddu", Quantity: 2},
			{ItemID: "peda", Quantity: 3},
		},
	})

	var stockErr *repository.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "peda", stockErr.ItemID)

	// the laddu decrement must have been rolled back
	var laddu model.Item
	require.NoError(t, db.First(&laddu, "id = ?", "laddu").Error)
	assert.Equal(t, 5, laddu.StockQty)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderRoutesCourierForNonLocalPincode(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "110001")
	seedItem(t, db, "kaju-katli", 20000, 500, 10)

	courier := &fakeDelhivery{rate: &client.CourierRate{TotalAmount: 85}}
	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 700}, courier)

	resp, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items:      []*dto.OrderItemInput{{ItemID: "kaju-katli", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderCourier, resp.Provider)
	assert.Equal(t, int64(8500), resp.DeliveryFee)
}

func TestCreateOrderNonServiceablePincode(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "999999")
	seedItem(t, db, "rasgulla", 8000, 300, 10)

	// courier returns no usable total amount for the lane
	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 100}, &fakeDelhivery{})

	_, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items:      []*dto.OrderItemInput{{ItemID: "rasgulla", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrNotServiceable)

	// nothing reserved for an unserviceable order
	var item model.Item
	require.NoError(t, db.First(&item, "id = ?", "rasgulla").Error)
	assert.Equal(t, 10, item.StockQty)
}

func TestCleanupStaleRestocksAndDeletes(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "273004")
	seedItem(t, db, "jalebi", 6000, 200, 10)

	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 1}, &fakeDelhivery{})

	resp, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items:      []*dto.OrderItemInput{{ItemID: "jalebi", Quantity: 4}},
	})
	require.NoError(t, err)

	// age the order past the TTL
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&model.Order{}).
		Where("id = ?", resp.OrderID).
		Update("created_at", old).Error)

	deleted, err := svc.CleanupStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	var item model.Item
	require.NoError(t, db.First(&item, "id = ?", "jalebi").Error)
	assert.Equal(t, 10, item.StockQty)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCleanupKeepsFreshPendingOrders(t *testing.T) {
	db := newTestDB(t)
	customer, address := seedCustomer(t, db, "273004")
	seedItem(t, db, "imarti", 6000, 200, 10)

	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 1}, &fakeDelhivery{})

	_, err := svc.CreateOrder(context.Background(), &dto.CreateOrderRequest{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		Items:      []*dto.OrderItemInput{{ItemID: "imarti", Quantity: 1}},
	})
	require.NoError(t, err)

	deleted, err := svc.CleanupStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStatusRejectsUnknownVocabulary(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(t, db, newFakeRazorpay(), &fakeGeo{distanceKm: 1}, &fakeDelhivery{})

	err := svc.UpdateStatus(context.Background(), "missing", "teleported")
	require.ErrorIs(t, err, ErrInvalidStatus)

	err = svc.UpdateStatus(context.Background(), "missing", model.OrderDelivered)
	require.ErrorIs(t, err, ErrOrderNotFound)
}
