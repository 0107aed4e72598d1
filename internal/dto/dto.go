package dto

import "time"

type OrderItemInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerID string            `json:"customer_id"`
	AddressID  string            `json:"address_id"`
	Pincode    string            `json:"pincode"`
	Items      []*OrderItemInput `json:"items"`
}

type CreateOrderResponse struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	DeliveryFee     int64  `json:"delivery_fee"`
	Provider        string `json:"delivery_provider"`
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id"`
	ProviderOrderID   string `json:"razorpay_order_id"`
	ProviderPaymentID string `json:"razorpay_payment_id"`
	Signature         string `json:"razorpay_signature"`
}

type PaymentFailureRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type ConfirmPaymentRequest struct {
	OrderID string `json:"order_id"`
}

type DeliveryQuoteResponse struct {
	Serviceable   bool               `json:"serviceable"`
	Provider      string             `json:"provider,omitempty"`
	PricingSource string             `json:"pricing_source,omitempty"`
	Charge        float64            `json:"charge,omitempty"`
	DistanceKm    float64            `json:"distance_km,omitempty"`
	ETA           string             `json:"eta,omitempty"`
	Breakdown     map[string]float64 `json:"breakdown,omitempty"`
	Message       string             `json:"message,omitempty"`
}

type OrderSummary struct {
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	DeliveryFee string `json:"delivery_fee"`
	TotalAmount int64  `json:"total_amount"`
}

type OrderDetail struct {
	OrderID          string          `json:"order_id"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	DeliveryProvider string          `json:"delivery_provider"`
	DeliveryAddress  string          `json:"delivery_address"`
	Items            []OrderItemView `json:"items"`
	Summary          OrderSummary    `json:"summary"`
	Payments         []PaymentView   `json:"payments"`
	Waybill          string          `json:"waybill,omitempty"`
	DeliveryStatus   string          `json:"delivery_status,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type OrderItemView struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type PaymentView struct {
	ProviderPaymentID string    `json:"payment_id,omitempty"`
	Status            string    `json:"status"`
	Source            string    `json:"source,omitempty"`
	Amount            int64     `json:"amount,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type OrderListResponse struct {
	Orders     []OrderDetail `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type TrackingResponse struct {
	Waybill          string `json:"waybill"`
	Status           string `json:"status"`
	Location         string `json:"location,omitempty"`
	ExpectedDelivery string `json:"expected_delivery,omitempty"`
}
