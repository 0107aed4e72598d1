package model

import "time"

// Order status values. Status and PaymentStatus are independent axes: Status
// tracks fulfilment, PaymentStatus tracks money. Both are projections of the
// append-only PaymentAttempt log plus the shipment lifecycle.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
	OrderFailed    = "failed"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// Delivery providers. Assigned at quote time, immutable afterward.
const (
	ProviderSelf    = "self"
	ProviderCourier = "delhivery"
)

// Payment attempt sources (which channel produced the record).
const (
	SourceCheckout = "checkout"
	SourceWebhook  = "webhook"
	SourceManual   = "manual_confirmation"
)

// Internal shipment status vocabulary mapped from courier status strings.
const (
	ShipmentCreated   = "SHIPMENT_CREATED"
	ShipmentInTransit = "IN_TRANSIT"
	ShipmentDelivered = "DELIVERED"
	ShipmentRTO       = "RTO"
	ShipmentPending   = "PENDING"
)

type Order struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	CustomerID string `gorm:"size:64;index;not null"`
	AddressID  string `gorm:"size:64;not null"` // ref into the customer's addresses

	Status        string `gorm:"size:32;index;not null"` // pending, confirmed, shipped, delivered, cancelled, failed
	PaymentStatus string `gorm:"size:32;index;not null"` // pending, paid, failed, cancelled

	// Razorpay order id, set at creation. Webhooks look orders up by it.
	ProviderOrderID string `gorm:"size:64;index"`

	// Amounts in paise. TotalAmount is fixed at creation and authoritative
	// for payment verification.
	TotalAmount int64  `gorm:"not null"`
	DeliveryFee int64  `gorm:"not null"`
	Currency    string `gorm:"size:8;not null"`

	DeliveryProvider string  `gorm:"size:32;not null"` // self, delhivery
	TotalWeightGrams int     `gorm:"not null"`
	DistanceKm       float64

	// Courier lifecycle fields. Populated only for delhivery orders.
	Waybill           string `gorm:"size:64;index"`
	DeliveryStatus    string `gorm:"size:32"`
	ShipmentAttempts  int    `gorm:"not null;default:0"`
	ShipmentLastError string

	// At most one of these may be set. Both set is an inconsistent state the
	// repair sweep resolves from the payment log.
	ConfirmedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a snapshot taken at order time. Price does not float with
// later catalog changes.
type OrderItem struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:64;index;not null"`
	ItemID  string `gorm:"size:64;index;not null"`

	Name        string `gorm:"size:128;not null"`
	Quantity    int    `gorm:"not null"`
	UnitPrice   int64  `gorm:"not null"` // paise
	WeightGrams int    `gorm:"not null"`

	CreatedAt time.Time
}

// PaymentAttempt is an immutable fact about one confirmation signal. The log
// is the source of truth; order.PaymentStatus is a cached projection of it.
// Rows are only ever appended.
type PaymentAttempt struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:64;index;not null"`

	ProviderOrderID   string `gorm:"size:64;index"`
	ProviderPaymentID string `gorm:"size:64;index"`
	Signature         string `gorm:"size:256"`

	Amount int64  // claimed amount in paise
	Status string `gorm:"size:32;not null"` // created, signature_verified, paid, failed, cancelled
	Method string `gorm:"size:32"`
	Source string `gorm:"size:32"` // checkout, webhook, manual_confirmation
	Reason string

	CreatedAt time.Time
}

type Item struct {
	ID          string `gorm:"primaryKey;size:64;not null"`
	Name        string `gorm:"size:128;not null"`
	Price       int64  `gorm:"not null"` // paise
	WeightGrams int    `gorm:"not null"`
	StockQty    int    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	ID    string `gorm:"primaryKey;size:64;not null"`
	Name  string `gorm:"size:128;not null"`
	Email string `gorm:"size:128;index"`
	Phone string `gorm:"size:16"`

	Addresses []Address `gorm:"foreignKey:CustomerID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Address struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	CustomerID string `gorm:"size:64;index;not null"`

	FirstName string `gorm:"size:64"`
	LastName  string `gorm:"size:64"`
	Street    string `gorm:"size:256"`
	City      string `gorm:"size:64"`
	State     string `gorm:"size:64"`
	Postcode  string `gorm:"size:8;not null"`

	CreatedAt time.Time
}

// WebhookEvent records processed webhook deliveries. Idempotency does not
// depend on it; the conditional update on payment_status is the authority.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
