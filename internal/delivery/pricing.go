// Package delivery decides how an order is physically delivered: the
// local-zone pincode set goes to the in-house fleet with distance-based
// pricing, everything else goes to the courier at the courier's real rate.
// The two pricing models are never mixed.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
)

const (
	PricingSourceSelf    = "SELF_DISTANCE"
	PricingSourceCourier = "COURIER_REAL"
)

var (
	ErrInvalidPincode   = errors.New("valid 6-digit pincode required")
	ErrProviderMismatch = errors.New("delivery provider not allowed for this pincode")
)

var pincodeRe = regexp.MustCompile(`^\d{6}$`)

// Quote is a transient pricing result; only the provider and charge survive
// onto the order. A COURIER_REAL quote always carries the upstream-returned
// total in its breakdown.
type Quote struct {
	Serviceable   bool
	Provider      string
	PricingSource string
	Charge        float64 // rupees
	DistanceKm    float64
	ETA           string
	Breakdown     map[string]float64
	Message       string
}

// Router partitions pincodes between the self-delivery fleet and the courier.
// The partition is exhaustive and mutually exclusive: membership in the local
// zone decides, nothing else.
type Router struct {
	cfg       *config.Delivery
	estimator *DistanceEstimator
	courier   client.DelhiveryClient
	localZone map[string]struct{}
}

func NewRouter(cfg *config.Delivery, estimator *DistanceEstimator, courier client.DelhiveryClient) *Router {
	zone := make(map[string]struct{}, len(cfg.LocalPincodes))
	for _, pin := range cfg.LocalPincodes {
		zone[pin] = struct{}{}
	}
	return &Router{
		cfg:       cfg,
		estimator: estimator,
		courier:   courier,
		localZone: zone,
	}
}

func (r *Router) IsLocalPincode(pincode string) bool {
	_, ok := r.localZone[pincode]
	return ok
}

// Quote prices delivery for a destination pincode and parcel weight.
func (r *Router) Quote(ctx context.Context, pincode string, weightGrams int) (*Quote, error) {
	if !pincodeRe.MatchString(pincode) {
		return nil, ErrInvalidPincode
	}
	if weightGrams <= 0 {
		weightGrams = 500
	}

	if r.IsLocalPincode(pincode) {
		return r.selfQuote(ctx, pincode, weightGrams), nil
	}
	return r.courierQuote(ctx, pincode, weightGrams), nil
}

func (r *Router) selfQuote(ctx context.Context, pincode string, weightGrams int) *Quote {
	distance, ok := r.estimator.Estimate(ctx, r.cfg.BasePincode, pincode)
	if !ok {
		distance = r.cfg.FallbackDistance
	}

	// the first 2 km and the first kg ride free
	baseRate := float64(r.cfg.BaseRate)
	distanceRate := math.Max(0, (distance-2)*float64(r.cfg.PerKmRate))
	weightRate := math.Max(0, float64(ceilKg(weightGrams)-1)*float64(r.cfg.PerKgRate))
	charge := math.Round(baseRate + distanceRate + weightRate)

	return &Quote{
		Serviceable:   true,
		Provider:      model.ProviderSelf,
		PricingSource: PricingSourceSelf,
		Charge:        charge,
		DistanceKm:    distance,
		ETA:           "1-2 hours",
		Breakdown: map[string]float64{
			"base_rate":     baseRate,
			"distance_rate": distanceRate,
			"weight_rate":   weightRate,
			"total":         charge,
		},
	}
}

func (r *Router) courierQuote(ctx context.Context, pincode string, weightGrams int) *Quote {
	rate, err := r.courier.GetRate(ctx, pincode, weightGrams)
	if err != nil || rate.TotalAmount <= 0 {
		// A missing rate is business information, not a transient fault:
		// the courier cannot deliver there.
		return &Quote{
			Serviceable: false,
			Message:     "Pincode not serviceable",
		}
	}

	breakdown := map[string]float64{"total_amount": rate.TotalAmount}
	for k, v := range rate.Breakdown {
		breakdown[k] = v
	}

	quote := &Quote{
		Serviceable:   true,
		Provider:      model.ProviderCourier,
		PricingSource: PricingSourceCourier,
		Charge:        rate.TotalAmount,
		ETA:           "1-3 business days",
		Breakdown:     breakdown,
	}

	// Distance is display-only for courier quotes; it never affects the price.
	if distance, ok := r.estimator.Estimate(ctx, r.cfg.BasePincode, pincode); ok {
		quote.DistanceKm = distance
	}

	return quote
}

// ValidateProvider rejects any attempt to pin the opposite provider onto a
// pincode. The courier must never serve the local zone, and the fleet never
// leaves it.
func (r *Router) ValidateProvider(pincode, provider string) error {
	local := r.IsLocalPincode(pincode)

	if local && provider == model.ProviderCourier {
		return fmt.Errorf("%w: courier cannot serve local-zone pincode %s", ErrProviderMismatch, pincode)
	}
	if !local && provider == model.ProviderSelf {
		return fmt.Errorf("%w: self delivery only covers local-zone pincodes, got %s", ErrProviderMismatch, pincode)
	}

	return nil
}

// ShouldCreateShipment reports whether an order is eligible for courier
// shipment creation. Self-delivery orders have no shipment capability by
// construction.
func ShouldCreateShipment(order *model.Order) bool {
	if order.DeliveryProvider == model.ProviderSelf {
		return false
	}

	return order.DeliveryProvider == model.ProviderCourier &&
		order.PaymentStatus == model.PaymentPaid &&
		order.Status == model.OrderConfirmed &&
		order.Waybill == ""
}

func ceilKg(grams int) int {
	if grams <= 0 {
		return 0
	}
	return (grams + 999) / 1000
}
