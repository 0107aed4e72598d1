package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDelhivery(t *testing.T, handler http.HandlerFunc) DelhiveryClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewDelhiveryClient(&config.Delhivery{
		BaseURL:   server.URL,
		Token:     "test-token",
		PickupPin: "273002",
	})
}

func TestGetRateSendsLaneParams(t *testing.T) {
	var query url.Values
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]CourierRate{{TotalAmount: 85.5}})
	})

	rate, err := c.GetRate(context.Background(), "110001", 2500)
	require.NoError(t, err)

	assert.Equal(t, 85.5, rate.TotalAmount)
	assert.Equal(t, "S", query.Get("md"))
	assert.Equal(t, "Delivered", query.Get("ss"))
	assert.Equal(t, "110001", query.Get("d_pin"))
	assert.Equal(t, "273002", query.Get("o_pin"))
	assert.Equal(t, "3", query.Get("cgm")) // 2500g rounds up to 3kg
}

func TestGetRateEmptyResponseMeansNoPrice(t *testing.T) {
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]CourierRate{})
	})

	rate, err := c.GetRate(context.Background(), "110001", 500)
	require.NoError(t, err)
	assert.Zero(t, rate.TotalAmount)
}

func TestGetRateUpstreamError(t *testing.T) {
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.GetRate(context.Background(), "110001", 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateShipmentParsesWaybill(t *testing.T) {
	var posted map[string]interface{}
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "json", r.Form.Get("format"))
		require.NoError(t, json.Unmarshal([]byte(r.Form.Get("data")), &posted))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"packages": []map[string]string{{"waybill": "WB999"}},
		})
	})

	result, err := c.CreateShipment(context.Background(), &ShipmentRequest{
		OrderID:      "order-1",
		CustomerName: "Asha Verma",
		Address:      "12 Park Road",
		City:         "Delhi",
		State:        "Delhi",
		Pincode:      "110001",
		Phone:        "98765 43210",
		AmountPaise:  29250,
		WeightGrams:  600,
		Quantity:     3,
		ItemsDesc:    "Kaju Katli x 3",
	})
	require.NoError(t, err)

	assert.Equal(t, "WB999", result.Waybill)
	assert.Equal(t, model.ShipmentCreated, result.Status)

	shipments := posted["shipments"].([]interface{})
	first := shipments[0].(map[string]interface{})
	assert.Equal(t, "PREPAID", first["payment_mode"])
	assert.Equal(t, float64(292), first["total_amount"]) // paise to whole rupees
	assert.Equal(t, "9876543210", first["phone"])
	assert.Equal(t, float64(1), first["weight"])
}

func TestCreateShipmentWithoutWaybillFails(t *testing.T) {
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"packages": []map[string]string{{"waybill": "", "remarks": "pincode not served"}},
		})
	})

	_, err := c.CreateShipment(context.Background(), &ShipmentRequest{OrderID: "order-1"})
	require.Error(t, err)
}

func TestTrackMapsCourierStatus(t *testing.T) {
	c := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "WB999", r.URL.Query().Get("waybill"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ShipmentData": []map[string]interface{}{
				{"Shipment": map[string]interface{}{
					"Status":               map[string]string{"Status": "In Transit"},
					"Origin":               "Gorakhpur_Hub",
					"ExpectedDeliveryDate": "2026-09-02",
				}},
			},
		})
	})

	result, err := c.Track(context.Background(), "WB999")
	require.NoError(t, err)

	assert.Equal(t, model.ShipmentInTransit, result.Status)
	assert.Equal(t, "Gorakhpur_Hub", result.Location)
	assert.Equal(t, "2026-09-02", result.ExpectedDelivery)
}

func TestMapCourierStatus(t *testing.T) {
	tests := []struct {
		courier string
		want    string
	}{
		{"Shipped", model.ShipmentCreated},
		{"Dispatched", model.ShipmentCreated},
		{"In Transit", model.ShipmentInTransit},
		{"Out for Delivery", model.ShipmentInTransit},
		{"Delivered", model.ShipmentDelivered},
		{"RTO Initiated", model.ShipmentRTO},
		{"Lost", model.ShipmentRTO},
		{"Manifested", model.ShipmentPending},
		{"", model.ShipmentPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapCourierStatus(tt.courier), "courier status %q", tt.courier)
	}
}
