package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Item{},
		&model.Customer{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentAttempt{},
		&model.WebhookEvent{},
	))

	return db
}

func testDeliveryConfig() *config.Delivery {
	return &config.Delivery{
		BasePincode:      "273001",
		LocalPincodes:    []string{"273001", "273002", "273004"},
		BaseRate:         30,
		PerKmRate:        5,
		PerKgRate:        10,
		FallbackDistance: 5,
	}
}

// fakeRazorpay records created orders and serves canned payment lookups.
type fakeRazorpay struct {
	payments   map[string]*client.ProviderPayment
	fetchErr   error
	orderSeq   int
	lastAmount int64
}

func newFakeRazorpay() *fakeRazorpay {
	return &fakeRazorpay{payments: map[string]*client.ProviderPayment{}}
}

func (f *fakeRazorpay) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*client.ProviderOrder, error) {
	f.orderSeq++
	f.lastAmount = amountPaise
	return &client.ProviderOrder{
		ID:       fmt.Sprintf("order_rzp_%d", f.orderSeq),
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (f *fakeRazorpay) FetchPayment(ctx context.Context, paymentID string) (*client.ProviderPayment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}
	return payment, nil
}

// fakeDelhivery serves a fixed rate and scripted shipment results.
type fakeDelhivery struct {
	rate        *client.CourierRate
	rateErr     error
	shipmentErr error
	waybill     string
	createCalls int
}

func (f *fakeDelhivery) GetRate(ctx context.Context, destPincode string, weightGrams int) (*client.CourierRate, error) {
	if f.rateErr != nil {
		return nil, f.rateErr
	}
	if f.rate == nil {
		return &client.CourierRate{}, nil
	}
	return f.rate, nil
}

func (f *fakeDelhivery) CreateShipment(ctx context.Context, shipment *client.ShipmentRequest) (*client.ShipmentResult, error) {
	f.createCalls++
	if f.shipmentErr != nil {
		return nil, f.shipmentErr
	}
	waybill := f.waybill
	if waybill == "" {
		waybill = "WB123456"
	}
	return &client.ShipmentResult{Waybill: waybill, Status: model.ShipmentCreated}, nil
}

func (f *fakeDelhivery) Track(ctx context.Context, waybill string) (*client.TrackingResult, error) {
	return &client.TrackingResult{Waybill: waybill, Status: model.ShipmentInTransit}, nil
}

// fakeGeo resolves every pincode and reports a fixed route distance.
type fakeGeo struct {
	distanceKm float64
	geocodeErr error
	routeErr   error
}

func (f *fakeGeo) Geocode(ctx context.Context, pincode string) (*client.Coordinates, error) {
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return &client.Coordinates{Lat: 26.76, Lon: 83.37}, nil
}

func (f *fakeGeo) RouteDistanceKm(ctx context.Context, from, to *client.Coordinates) (float64, error) {
	if f.routeErr != nil {
		return 0, f.routeErr
	}
	return f.distanceKm, nil
}

// fakeShipments records async shipment triggers from the reconciler.
type fakeShipments struct {
	asyncCalls []string
}

func (f *fakeShipments) CreateShipment(ctx context.Context, orderID string) error { return nil }
func (f *fakeShipments) CreateAsync(orderID string) {
	f.asyncCalls = append(f.asyncCalls, orderID)
}
func (f *fakeShipments) RetryFailed(ctx context.Context) (*RetryResult, error) {
	return &RetryResult{}, nil
}
func (f *fakeShipments) NeedingIntervention(ctx context.Context) ([]*model.Order, error) {
	return nil, nil
}
func (f *fakeShipments) Track(ctx context.Context, waybill string) (*dto.TrackingResponse, error) {
	return nil, nil
}

func newTestRouter(geo client.GeoClient, courier client.DelhiveryClient) *delivery.Router {
	return delivery.NewRouter(testDeliveryConfig(), delivery.NewDistanceEstimator(geo), courier)
}

func seedCustomer(t *testing.T, db *gorm.DB, pincode string) (*model.Customer, *model.Address) {
	t.Helper()

	customer := &model.Customer{
		ID:    uuid.NewString(),
		Name:  "Asha Verma",
		Email: "asha@example.com",
		Phone: "9876543210",
	}
	require.NoError(t, db.Create(customer).Error)

	address := &model.Address{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		FirstName:  "Asha",
		LastName:   "Verma",
		Street:     "12 Park Road",
		City:       "Gorakhpur",
		State:      "Uttar Pradesh",
		Postcode:   pincode,
	}
	require.NoError(t, db.Create(address).Error)

	return customer, address
}

func seedItem(t *testing.T, db *gorm.DB, id string, pricePaise int64, weightGrams, stock int) *model.Item {
	t.Helper()

	item := &model.Item{
		ID:          id,
		Name:        "Item " + id,
		Price:       pricePaise,
		WeightGrams: weightGrams,
		StockQty:    stock,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
