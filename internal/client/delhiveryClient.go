package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
)

// DelhiveryClient wraps the courier's rate, shipment and tracking APIs.
type DelhiveryClient interface {
	GetRate(ctx context.Context, destPincode string, weightGrams int) (*CourierRate, error)
	CreateShipment(ctx context.Context, shipment *ShipmentRequest) (*ShipmentResult, error)
	Track(ctx context.Context, waybill string) (*TrackingResult, error)
}

// CourierRate is the raw upstream rate response. TotalAmount == 0 means the
// courier returned no usable price for the lane.
type CourierRate struct {
	TotalAmount float64            `json:"total_amount"`
	Breakdown   map[string]float64 `json:"breakdown,omitempty"`
}

type ShipmentRequest struct {
	OrderID      string
	CustomerName string
	Address      string
	City         string
	State        string
	Pincode      string
	Phone        string
	AmountPaise  int64
	WeightGrams  int
	Quantity     int
	ItemsDesc    string
}

type ShipmentResult struct {
	Waybill string
	Status  string
}

type TrackingResult struct {
	Waybill          string
	Status           string // internal vocabulary
	Location         string
	ExpectedDelivery string
}

type delhiveryClientImpl struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pickupPin  string
}

func NewDelhiveryClient(cfg *config.Delhivery) DelhiveryClient {
	return &delhiveryClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		pickupPin: cfg.PickupPin,
	}
}

func (c *delhiveryClientImpl) GetRate(ctx context.Context, destPincode string, weightGrams int) (*CourierRate, error) {
	q := url.Values{}
	q.Set("md", "S") // surface mode
	q.Set("ss", "Delivered")
	q.Set("d_pin", destPincode)
	q.Set("o_pin", c.pickupPin)
	q.Set("cgm", strconv.Itoa(ceilKg(weightGrams)))

	reqURL := c.baseURL + "/api/kinko/v1/invoice/charges/.json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delhivery rate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("delhivery error %d: %s", resp.StatusCode, string(b))
	}

	var rates []CourierRate
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("decode delhivery rate response: %w", err)
	}
	if len(rates) == 0 {
		return &CourierRate{}, nil
	}

	return &rates[0], nil
}

func (c *delhiveryClientImpl) CreateShipment(ctx context.Context, shipment *ShipmentRequest) (*ShipmentResult, error) {
	payload := map[string]interface{}{
		"shipments": []map[string]interface{}{
			{
				"name":          truncate(shipment.CustomerName, 50),
				"add":           truncate(shipment.Address, 200),
				"pin":           shipment.Pincode,
				"city":          truncate(shipment.City, 50),
				"state":         truncate(shipment.State, 50),
				"country":       "India",
				"phone":         cleanPhone(shipment.Phone),
				"order":         truncate(shipment.OrderID, 50),
				"payment_mode":  "PREPAID",
				"cod_amount":    0,
				"order_date":    time.Now().Format("2006-01-02"),
				"total_amount":  shipment.AmountPaise / 100,
				"products_desc": truncate(shipment.ItemsDesc, 300),
				"quantity":      shipment.Quantity,
				"weight":        max(1, ceilKg(shipment.WeightGrams)),
				"shipping_mode": "Surface",
				"address_type":  "home",
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal shipment payload: %w", err)
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/cmu/create.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delhivery shipment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("delhivery error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Packages []struct {
			Waybill string `json:"waybill"`
			Remarks any    `json:"remarks"`
		} `json:"packages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode delhivery shipment response: %w", err)
	}

	if len(result.Packages) == 0 || result.Packages[0].Waybill == "" {
		return nil, fmt.Errorf("no waybill received from delhivery")
	}

	return &ShipmentResult{
		Waybill: result.Packages[0].Waybill,
		Status:  model.ShipmentCreated,
	}, nil
}

func (c *delhiveryClientImpl) Track(ctx context.Context, waybill string) (*TrackingResult, error) {
	q := url.Values{}
	q.Set("waybill", waybill)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/packages/json/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delhivery tracking request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("delhivery error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		ShipmentData []struct {
			Shipment struct {
				Status struct {
					Status string `json:"Status"`
				} `json:"Status"`
				Origin               string `json:"Origin"`
				ExpectedDeliveryDate string `json:"ExpectedDeliveryDate"`
			} `json:"Shipment"`
		} `json:"ShipmentData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode delhivery tracking response: %w", err)
	}

	if len(result.ShipmentData) == 0 {
		return nil, fmt.Errorf("shipment not found for waybill %s", waybill)
	}

	shipment := result.ShipmentData[0].Shipment
	return &TrackingResult{
		Waybill:          waybill,
		Status:           MapCourierStatus(shipment.Status.Status),
		Location:         shipment.Origin,
		ExpectedDelivery: shipment.ExpectedDeliveryDate,
	}, nil
}

// MapCourierStatus maps the courier's status strings onto the internal
// shipment vocabulary. Unknown strings map to PENDING.
func MapCourierStatus(courierStatus string) string {
	switch courierStatus {
	case "Shipped", "Dispatched":
		return model.ShipmentCreated
	case "In transit", "In Transit", "Out for Delivery", "Out For Delivery":
		return model.ShipmentInTransit
	case "Delivered":
		return model.ShipmentDelivered
	case "RTO Initiated", "RTO-Initiated", "RTO Delivered", "RTO-Delivered", "Cancelled", "Lost", "Damaged":
		return model.ShipmentRTO
	default:
		return model.ShipmentPending
	}
}

func ceilKg(grams int) int {
	if grams <= 0 {
		return 0
	}
	return (grams + 999) / 1000
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func cleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return truncate(b.String(), 10)
}
