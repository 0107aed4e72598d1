package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"gorm.io/gorm"
)

type RetryResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ShipmentService drives the courier shipment lifecycle: creation after
// payment confirmation, bounded retry for failures, and escalation to manual
// intervention once the attempt cap is hit.
type ShipmentService interface {
	CreateShipment(ctx context.Context, orderID string) error
	// CreateAsync triggers shipment creation without blocking the caller.
	// Payment confirmation must return promptly regardless of courier
	// latency; the retry sweep covers any failure here.
	CreateAsync(orderID string)
	RetryFailed(ctx context.Context) (*RetryResult, error)
	NeedingIntervention(ctx context.Context) ([]*model.Order, error)
	Track(ctx context.Context, waybill string) (*dto.TrackingResponse, error)
}

type shipmentServiceImpl struct {
	cfg             *config.Shipment
	delhiveryClient client.DelhiveryClient
	router          *delivery.Router
	orderRepo       repository.OrderRepository
	customerRepo    repository.CustomerRepository
}

func NewShipmentService(
	cfg *config.Shipment,
	delhiveryClient client.DelhiveryClient,
	router *delivery.Router,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
) ShipmentService {
	return &shipmentServiceImpl{
		cfg:             cfg,
		delhiveryClient: delhiveryClient,
		router:          router,
		orderRepo:       orderRepo,
		customerRepo:    customerRepo,
	}
}

func (s *shipmentServiceImpl) CreateShipment(ctx context.Context, orderID string) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !delivery.ShouldCreateShipment(order) {
		log.Printf("shipment creation skipped for order %s (provider=%s, payment=%s, waybill=%q)",
			order.ID, order.DeliveryProvider, order.PaymentStatus, order.Waybill)
		return nil
	}

	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}
	address, err := s.customerRepo.FindAddress(ctx, order.CustomerID, order.AddressID)
	if err != nil {
		return s.recordFailure(ctx, order.ID, fmt.Errorf("delivery address not found: %w", err))
	}

	// A courier shipment for a local-zone destination must never be built.
	if err := s.router.ValidateProvider(address.Postcode, model.ProviderCourier); err != nil {
		return s.recordFailure(ctx, order.ID, err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}

	descs := make([]string, len(items))
	quantity := 0
	for i, item := range items {
		descs[i] = fmt.Sprintf("%s x %d", item.Name, item.Quantity)
		quantity += item.Quantity
	}

	result, err := s.delhiveryClient.CreateShipment(ctx, &client.ShipmentRequest{
		OrderID:      order.ID,
		CustomerName: strings.TrimSpace(address.FirstName + " " + address.LastName),
		Address:      address.Street,
		City:         address.City,
		State:        address.State,
		Pincode:      address.Postcode,
		Phone:        customer.Phone,
		AmountPaise:  order.TotalAmount,
		WeightGrams:  order.TotalWeightGrams,
		Quantity:     quantity,
		ItemsDesc:    strings.Join(descs, ", "),
	})
	if err != nil {
		return s.recordFailure(ctx, order.ID, err)
	}

	if err := s.orderRepo.SetShipmentCreated(ctx, order.ID, result.Waybill, result.Status); err != nil {
		return fmt.Errorf("store waybill: %w", err)
	}

	log.Printf("shipment created for order %s: waybill %s", order.ID, result.Waybill)
	return nil
}

func (s *shipmentServiceImpl) recordFailure(ctx context.Context, orderID string, cause error) error {
	if err := s.orderRepo.RecordShipmentFailure(ctx, orderID, cause.Error()); err != nil {
		return fmt.Errorf("record shipment failure: %w", err)
	}
	return fmt.Errorf("create shipment for order %s: %w", orderID, cause)
}

func (s *shipmentServiceImpl) CreateAsync(orderID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.CreateShipment(ctx, orderID); err != nil {
			log.Printf("async shipment creation for order %s: %v", orderID, err)
		}
	}()
}

func (s *shipmentServiceImpl) RetryFailed(ctx context.Context) (*RetryResult, error) {
	orders, err := s.orderRepo.FindNeedingShipment(ctx, s.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("find orders needing shipment: %w", err)
	}

	result := &RetryResult{Total: len(orders)}
	for _, order := range orders {
		if err := s.CreateShipment(ctx, order.ID); err != nil {
			result.Failed++
			log.Printf("shipment retry for order %s: %v", order.ID, err)
			continue
		}
		result.Success++
	}

	return result, nil
}

func (s *shipmentServiceImpl) NeedingIntervention(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.FindNeedingIntervention(ctx, s.cfg.MaxAttempts)
}

func (s *shipmentServiceImpl) Track(ctx context.Context, waybill string) (*dto.TrackingResponse, error) {
	result, err := s.delhiveryClient.Track(ctx, waybill)
	if err != nil {
		return nil, fmt.Errorf("track waybill %s: %w", waybill, err)
	}

	return &dto.TrackingResponse{
		Waybill:          result.Waybill,
		Status:           result.Status,
		Location:         result.Location,
		ExpectedDelivery: result.ExpectedDelivery,
	}, nil
}
