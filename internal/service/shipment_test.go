package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newShipmentService(t *testing.T, db *gorm.DB, courier *fakeDelhivery) ShipmentService {
	t.Helper()

	return NewShipmentService(
		&config.Shipment{MaxAttempts: 3, RetryInterval: time.Minute},
		courier,
		newTestRouter(&fakeGeo{distanceKm: 700}, courier),
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
	)
}

// seedCourierOrder creates a paid, confirmed delhivery order with one line
// item, ready for shipment creation.
func seedCourierOrder(t *testing.T, db *gorm.DB, pincode string) *model.Order {
	t.Helper()

	customer, address := seedCustomer(t, db, pincode)
	order := seedOrder(t, db, model.ProviderCourier, "order_rzp_ship")
	now := time.Now()
	require.NoError(t, db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"customer_id":    customer.ID,
			"address_id":     address.ID,
			"status":         model.OrderConfirmed,
			"payment_status": model.PaymentPaid,
			"confirmed_at":   now,
		}).Error)

	require.NoError(t, db.Create(&model.OrderItem{
		OrderID:     order.ID,
		ItemID:      "kaju-katli",
		Name:        "Kaju Katli",
		Quantity:    2,
		UnitPrice:   20000,
		WeightGrams: 500,
	}).Error)

	return reloadOrder(t, db, order.ID)
}

func TestCreateShipmentSetsWaybill(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{waybill: "WB777"}
	svc := newShipmentService(t, db, courier)
	order := seedCourierOrder(t, db, "110001")

	require.NoError(t, svc.CreateShipment(context.Background(), order.ID))

	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, "WB777", got.Waybill)
	assert.Equal(t, model.OrderShipped, got.Status)
	assert.Equal(t, model.ShipmentCreated, got.DeliveryStatus)
	assert.Equal(t, 1, got.ShipmentAttempts)
	assert.Empty(t, got.ShipmentLastError)
	assert.Equal(t, 1, courier.createCalls)
}

func TestCreateShipmentSkipsSelfDelivery(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{}
	svc := newShipmentService(t, db, courier)

	customer, address := seedCustomer(t, db, "273004")
	order := seedOrder(t, db, model.ProviderSelf, "order_rzp_self")
	require.NoError(t, db.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"customer_id":    customer.ID,
			"address_id":     address.ID,
			"status":         model.OrderConfirmed,
			"payment_status": model.PaymentPaid,
		}).Error)

	require.NoError(t, svc.CreateShipment(context.Background(), order.ID))

	got := reloadOrder(t, db, order.ID)
	assert.Empty(t, got.Waybill)
	assert.Zero(t, got.ShipmentAttempts)
	assert.Zero(t, courier.createCalls)
}

func TestCreateShipmentSkipsUnpaidOrder(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{}
	svc := newShipmentService(t, db, courier)
	order := seedOrder(t, db, model.ProviderCourier, "order_rzp_unpaid")

	require.NoError(t, svc.CreateShipment(context.Background(), order.ID))

	got := reloadOrder(t, db, order.ID)
	assert.Empty(t, got.Waybill)
	assert.Zero(t, courier.createCalls)
}

func TestCreateShipmentIsIdempotentPerWaybill(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{}
	svc := newShipmentService(t, db, courier)
	order := seedCourierOrder(t, db, "110001")

	require.NoError(t, svc.CreateShipment(context.Background(), order.ID))
	require.NoError(t, svc.CreateShipment(context.Background(), order.ID))

	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, 1, got.ShipmentAttempts)
	assert.Equal(t, 1, courier.createCalls)
}

func TestCreateShipmentFailureKeepsOrderConfirmed(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{shipmentErr: errors.New("courier api down")}
	svc := newShipmentService(t, db, courier)
	order := seedCourierOrder(t, db, "110001")

	err := svc.CreateShipment(context.Background(), order.ID)
	require.Error(t, err)

	got := reloadOrder(t, db, order.ID)
	assert.Empty(t, got.Waybill)
	assert.Equal(t, model.OrderConfirmed, got.Status)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, 1, got.ShipmentAttempts)
	assert.Contains(t, got.ShipmentLastError, "courier api down")
}

func TestCreateShipmentRejectsLocalZoneCourierOrder(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{}
	svc := newShipmentService(t, db, courier)
	// courier assignment with a local-zone destination is a data error, not
	// something to ship around
	order := seedCourierOrder(t, db, "273004")

	err := svc.CreateShipment(context.Background(), order.ID)
	require.Error(t, err)
	assert.Zero(t, courier.createCalls)

	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, 1, got.ShipmentAttempts)
	assert.NotEmpty(t, got.ShipmentLastError)
}

func TestRetryFailedRecoversOrders(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{shipmentErr: errors.New("courier api down")}
	svc := newShipmentService(t, db, courier)
	order := seedCourierOrder(t, db, "110001")

	require.Error(t, svc.CreateShipment(context.Background(), order.ID))

	// courier recovers; the sweep picks the order up
	courier.shipmentErr = nil
	result, err := svc.RetryFailed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Success)
	assert.Zero(t, result.Failed)

	got := reloadOrder(t, db, order.ID)
	assert.NotEmpty(t, got.Waybill)
	assert.Equal(t, model.OrderShipped, got.Status)
}

func TestRetryFailedStopsAtAttemptCap(t *testing.T) {
	db := newTestDB(t)
	courier := &fakeDelhivery{shipmentErr: errors.New("courier api down")}
	svc := newShipmentService(t, db, courier)
	order := seedCourierOrder(t, db, "110001")

	for i := 0; i < 3; i++ {
		require.Error(t, svc.CreateShipment(context.Background(), order.ID))
	}

	result, err := svc.RetryFailed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	// capped orders surface on the intervention list instead
	stuck, err := svc.NeedingIntervention(context.Background())
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, order.ID, stuck[0].ID)
	assert.Equal(t, 3, stuck[0].ShipmentAttempts)
}
