package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GST applies to items only, never to the delivery fee.
var taxRate = decimal.NewFromFloat(0.05)

type OrderService interface {
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*dto.OrderDetail, error)
	ListOrders(ctx context.Context, filter repository.ListFilter, page, limit int) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	CleanupStale(ctx context.Context) (int, error)
}

type orderServiceImpl struct {
	db             *gorm.DB
	cleanupCfg     *config.Cleanup
	razorpayClient client.RazorpayClient
	router         *delivery.Router
	orderRepo      repository.OrderRepository
	itemRepo       repository.ItemRepository
	customerRepo   repository.CustomerRepository
}

func NewOrderService(
	db *gorm.DB,
	cleanupCfg *config.Cleanup,
	razorpayClient client.RazorpayClient,
	router *delivery.Router,
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	customerRepo repository.CustomerRepository,
) OrderService {
	return &orderServiceImpl{
		db:             db,
		cleanupCfg:     cleanupCfg,
		razorpayClient: razorpayClient,
		router:         router,
		orderRepo:      orderRepo,
		itemRepo:       itemRepo,
		customerRepo:   customerRepo,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrInvalidOrder
	}

	itemIDs := make([]string, len(req.Items))
	quantities := make(map[string]int, len(req.Items))
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidOrder)
		}
		itemIDs[i] = line.ItemID
		quantities[line.ItemID] = line.Quantity
	}

	items, err := s.itemRepo.FindMany(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	if len(items) != len(req.Items) {
		return nil, fmt.Errorf("%w: some items not found", ErrInvalidOrder)
	}

	address, err := s.customerRepo.FindAddress(ctx, req.CustomerID, req.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: delivery address not found", ErrInvalidOrder)
		}
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	pincode := req.Pincode
	if pincode == "" {
		pincode = address.Postcode
	}

	totalWeight := 0
	for _, item := range items {
		totalWeight += item.WeightGrams * quantities[item.ID]
	}

	quote, err := s.router.Quote(ctx, pincode, totalWeight)
	if err != nil {
		return nil, err
	}
	if !quote.Serviceable {
		return nil, ErrNotServiceable
	}

	subtotalPaise := int64(0)
	orderItems := make([]*model.OrderItem, len(items))
	for i, item := range items {
		qty := quantities[item.ID]
		subtotalPaise += item.Price * int64(qty)

		orderItems[i] = &model.OrderItem{
			ItemID:      item.ID,
			Name:        item.Name,
			Quantity:    qty,
			UnitPrice:   item.Price,
			WeightGrams: item.WeightGrams,
		}
	}

	deliveryFeePaise := decimal.NewFromFloat(quote.Charge).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	totalPaise := totalWithTax(subtotalPaise, deliveryFeePaise)

	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())
	providerOrder, err := s.razorpayClient.CreateOrder(ctx, totalPaise, receipt)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	order := &model.Order{
		ID:               uuid.NewString(),
		CustomerID:       req.CustomerID,
		AddressID:        req.AddressID,
		Status:           model.OrderPending,
		PaymentStatus:    model.PaymentPending,
		ProviderOrderID:  providerOrder.ID,
		TotalAmount:      totalPaise,
		DeliveryFee:      deliveryFeePaise,
		Currency:         "INR",
		DeliveryProvider: quote.Provider,
		TotalWeightGrams: totalWeight,
		DistanceKm:       quote.DistanceKm,
	}
	for _, line := range orderItems {
		line.OrderID = order.ID
	}

	lines := make([]repository.ReservationLine, len(req.Items))
	for i, line := range req.Items {
		lines[i] = repository.ReservationLine{ItemID: line.ItemID, Quantity: line.Quantity}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Stock is committed optimistically at placement; CleanupStale
		// releases it if the order never pays.
		if err := s.itemRepo.Reserve(ctx, tx, lines); err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.AppendPaymentAttempt(ctx, &model.PaymentAttempt{
		OrderID:         order.ID,
		ProviderOrderID: providerOrder.ID,
		Amount:          totalPaise,
		Status:          "created",
	}); err != nil {
		return nil, fmt.Errorf("record payment attempt: %w", err)
	}

	return &dto.CreateOrderResponse{
		OrderID:         order.ID,
		ProviderOrderID: providerOrder.ID,
		Amount:          totalPaise,
		Currency:        "INR",
		DeliveryFee:     deliveryFeePaise,
		Provider:        quote.Provider,
	}, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*dto.OrderDetail, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return s.buildDetail(ctx, order)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter repository.ListFilter, page, limit int) (*dto.OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	orders, total, err := s.orderRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	details := make([]dto.OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail, err := s.buildDetail(ctx, order)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	return &dto.OrderListResponse{
		Orders: details,
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID, status string) error {
	switch status {
	case model.OrderPending, model.OrderConfirmed, model.OrderShipped,
		model.OrderDelivered, model.OrderCancelled, model.OrderFailed:
	default:
		return ErrInvalidStatus
	}

	err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// CleanupStale deletes failed and cancelled orders plus pending/pending
// orders older than the configured TTL, restocking the reserved quantities
// of every deleted order. None of them captured payment, so the reservation
// is returned rather than leaked.
func (s *orderServiceImpl) CleanupStale(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cleanupCfg.PendingTTL)

	stale, err := s.orderRepo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find stale orders: %w", err)
	}

	dead, _, err := s.orderRepo.List(ctx, repository.ListFilter{Failed: true}, 1, 1000)
	if err != nil {
		return 0, fmt.Errorf("find failed orders: %w", err)
	}

	deleted := 0
	for _, order := range append(stale, dead...) {
		items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
		if err != nil {
			return deleted, fmt.Errorf("get order items: %w", err)
		}

		lines := make([]repository.ReservationLine, len(items))
		for i, item := range items {
			lines[i] = repository.ReservationLine{ItemID: item.ItemID, Quantity: item.Quantity}
		}

		orderID := order.ID
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.itemRepo.Restock(ctx, tx, lines); err != nil {
				return err
			}
			return s.orderRepo.DeleteWithChildren(ctx, tx, orderID)
		})
		if err != nil {
			return deleted, fmt.Errorf("delete order %s: %w", orderID, err)
		}
		deleted++
	}

	return deleted, nil
}

func (s *orderServiceImpl) buildDetail(ctx context.Context, order *model.Order) (*dto.OrderDetail, error) {
	items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	attempts, err := s.orderRepo.GetPaymentAttempts(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get payment attempts: %w", err)
	}

	addressLine := "Address not available"
	if address, err := s.customerRepo.FindAddress(ctx, order.CustomerID, order.AddressID); err == nil {
		addressLine = formatAddress(address)
	}

	itemViews := make([]dto.OrderItemView, len(items))
	subtotalPaise := int64(0)
	for i, item := range items {
		subtotalPaise += item.UnitPrice * int64(item.Quantity)
		itemViews[i] = dto.OrderItemView{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	paymentViews := make([]dto.PaymentView, len(attempts))
	for i, attempt := range attempts {
		paymentViews[i] = dto.PaymentView{
			ProviderPaymentID: attempt.ProviderPaymentID,
			Status:            attempt.Status,
			Source:            attempt.Source,
			Amount:            attempt.Amount,
			CreatedAt:         attempt.CreatedAt,
		}
	}

	subtotal := decimal.NewFromInt(subtotalPaise).Div(decimal.NewFromInt(100))
	tax := subtotal.Mul(taxRate).Round(2)
	fee := decimal.NewFromInt(order.DeliveryFee).Div(decimal.NewFromInt(100))

	return &dto.OrderDetail{
		OrderID:          order.ID,
		Status:           order.Status,
		PaymentStatus:    order.PaymentStatus,
		DeliveryProvider: order.DeliveryProvider,
		DeliveryAddress:  addressLine,
		Items:            itemViews,
		Summary: dto.OrderSummary{
			Subtotal:    subtotal.StringFixed(2),
			Tax:         tax.StringFixed(2),
			DeliveryFee: fee.StringFixed(2),
			TotalAmount: order.TotalAmount,
		},
		Payments:       paymentViews,
		Waybill:        order.Waybill,
		DeliveryStatus: order.DeliveryStatus,
		CreatedAt:      order.CreatedAt,
	}, nil
}

// totalWithTax computes the authoritative order amount in paise:
// subtotal + 5% GST on the subtotal + the delivery fee.
func totalWithTax(subtotalPaise, deliveryFeePaise int64) int64 {
	subtotal := decimal.NewFromInt(subtotalPaise)
	tax := subtotal.Mul(taxRate).Round(0)
	return subtotal.Add(tax).Add(decimal.NewFromInt(deliveryFeePaise)).IntPart()
}

func formatAddress(a *model.Address) string {
	parts := []string{
		strings.TrimSpace(a.FirstName + " " + a.LastName),
		a.Street,
		a.City,
		a.State + " - " + a.Postcode,
	}
	return strings.Join(parts, ", ")
}
