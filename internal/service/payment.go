package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/model"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/SaumyaSingh04/Chow-Back/internal/signature"
	"gorm.io/gorm"
)

// PaymentService reconciles confirmation signals from the three channels
// (client checkout callback, provider webhook, manual operator re-check)
// into one authoritative verdict per order. Every transition is a
// conditional update, so replays and races converge to a single paid state.
type PaymentService interface {
	VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) error
	HandleFailure(ctx context.Context, orderID, reason string) error
	HandleWebhook(ctx context.Context, body []byte, sig, eventID string) error
	ConfirmPayment(ctx context.Context, orderID string) error
	FixInconsistent(ctx context.Context) (int, error)
}

type paymentServiceImpl struct {
	razorpayClient client.RazorpayClient
	verifier       *signature.Verifier
	orderRepo      repository.OrderRepository
	webhookRepo    repository.WebhookEventRepository
	shipments      ShipmentService
}

func NewPaymentService(
	razorpayClient client.RazorpayClient,
	verifier *signature.Verifier,
	orderRepo repository.OrderRepository,
	webhookRepo repository.WebhookEventRepository,
	shipments ShipmentService,
) PaymentService {
	return &paymentServiceImpl{
		razorpayClient: razorpayClient,
		verifier:       verifier,
		orderRepo:      orderRepo,
		webhookRepo:    webhookRepo,
		shipments:      shipments,
	}
}

// VerifyPayment is the client-callback channel. The signature only proves
// the client saw real provider identifiers, so the payment status is
// re-fetched from the provider instead of trusting the claimed outcome.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) error {
	order, err := s.findOrder(ctx, req.OrderID)
	if err != nil {
		return err
	}

	// Replays of an applied confirmation are successful no-ops.
	if order.PaymentStatus == model.PaymentPaid {
		return nil
	}

	if !s.verifier.VerifyCheckout(req.ProviderOrderID, req.ProviderPaymentID, req.Signature) {
		return ErrInvalidSignature
	}

	payment, err := s.razorpayClient.FetchPayment(ctx, req.ProviderPaymentID)
	if err != nil {
		// Leave the order as-is; the manual channel can recover later.
		return fmt.Errorf("fetch payment %s: %w", req.ProviderPaymentID, err)
	}

	if payment.Status == client.PaymentCaptured {
		return s.confirm(ctx, order, payment, model.SourceCheckout, req.Signature)
	}

	// Not captured yet: record the verified identifiers so the webhook or
	// the manual re-check can finish the job.
	return s.orderRepo.AppendPaymentAttempt(ctx, &model.PaymentAttempt{
		OrderID:           order.ID,
		ProviderOrderID:   req.ProviderOrderID,
		ProviderPaymentID: req.ProviderPaymentID,
		Signature:         req.Signature,
		Status:            "signature_verified",
		Source:            model.SourceCheckout,
	})
}

// HandleFailure is a client-initiated cancellation. Once money is captured
// it cannot be un-captured by a client request.
func (s *paymentServiceImpl) HandleFailure(ctx context.Context, orderID, reason string) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == model.PaymentPaid {
		return ErrPaymentAlreadyCaptured
	}

	applied, err := s.orderRepo.MarkCancelled(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if !applied {
		// Lost a race. If a confirmation won it, that is a conflict.
		current, err := s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if current.PaymentStatus == model.PaymentPaid {
			return ErrPaymentAlreadyCaptured
		}
		return nil
	}

	if reason == "" {
		reason = "user cancelled payment"
	}
	return s.orderRepo.AppendPaymentAttempt(ctx, &model.PaymentAttempt{
		OrderID: orderID,
		Status:  model.PaymentCancelled,
		Source:  model.SourceCheckout,
		Reason:  reason,
	})
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Method  string `json:"method"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook is the authoritative push channel. The whole-body HMAC must
// verify before any field is read. An unknown order is not a webhook-level
// error: the upstream sender must not retry it.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, body []byte, sig, eventID string) error {
	if !s.verifier.VerifyWebhook(body, sig) {
		return ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	if eventID != "" {
		processed, err := s.webhookRepo.Exists(ctx, eventID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if processed {
			return nil
		}
	}

	entity := payload.Payload.Payment.Entity
	order, err := s.orderRepo.FindByProviderOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook for unknown provider order %s ignored", entity.OrderID)
			return nil
		}
		return fmt.Errorf("find order: %w", err)
	}

	switch payload.Event {
	case "payment.captured":
		err = s.confirm(ctx, order, &client.ProviderPayment{
			ID:      entity.ID,
			OrderID: entity.OrderID,
			Amount:  entity.Amount,
			Method:  entity.Method,
			Status:  client.PaymentCaptured,
		}, model.SourceWebhook, sig)
	case "payment.failed":
		err = s.fail(ctx, order, entity.ID, entity.Amount)
	default:
		log.Printf("webhook event %s ignored", payload.Event)
	}
	if err != nil {
		return err
	}

	if eventID != "" {
		if err := s.webhookRepo.MarkProcessed(ctx, eventID, payload.Event); err != nil {
			return fmt.Errorf("mark webhook processed: %w", err)
		}
	}

	return nil
}

// ConfirmPayment is the manual re-check channel, recovering from a lost
// webhook. It trusts nothing but the provider's own record.
func (s *paymentServiceImpl) ConfirmPayment(ctx context.Context, orderID string) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == model.PaymentPaid {
		return nil
	}

	attempts, err := s.orderRepo.GetPaymentAttempts(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get payment attempts: %w", err)
	}

	paymentID := ""
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].ProviderPaymentID != "" {
			paymentID = attempts[i].ProviderPaymentID
			break
		}
	}
	if paymentID == "" {
		return ErrNoPaymentID
	}

	payment, err := s.razorpayClient.FetchPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if payment.Status != client.PaymentCaptured {
		return ErrPaymentNotCaptured
	}

	return s.confirm(ctx, order, payment, model.SourceManual, "")
}

// FixInconsistent is the repair sweep of last resort: orders carrying both
// confirmed and cancelled timestamps are resolved in favour of paid when the
// payment log shows a paid record.
func (s *paymentServiceImpl) FixInconsistent(ctx context.Context) (int, error) {
	orders, err := s.orderRepo.FindInconsistent(ctx)
	if err != nil {
		return 0, fmt.Errorf("find inconsistent orders: %w", err)
	}

	fixed := 0
	for _, order := range orders {
		attempts, err := s.orderRepo.GetPaymentAttempts(ctx, order.ID)
		if err != nil {
			return fixed, fmt.Errorf("get payment attempts: %w", err)
		}

		paid := order.PaymentStatus == model.PaymentPaid
		for _, attempt := range attempts {
			if attempt.Status == model.PaymentPaid {
				paid = true
				break
			}
		}
		if !paid {
			continue
		}

		if err := s.orderRepo.RepairConfirmed(ctx, order.ID); err != nil {
			return fixed, fmt.Errorf("repair order %s: %w", order.ID, err)
		}
		fixed++
	}

	return fixed, nil
}

// confirm applies the paid transition exactly once. The conditional update
// decides the winner; losers return success without appending anything.
func (s *paymentServiceImpl) confirm(ctx context.Context, order *model.Order, payment *client.ProviderPayment, source, sig string) error {
	applied, err := s.orderRepo.MarkPaid(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if !applied {
		return nil
	}

	if err := s.orderRepo.AppendPaymentAttempt(ctx, &model.PaymentAttempt{
		OrderID:           order.ID,
		ProviderOrderID:   payment.OrderID,
		ProviderPaymentID: payment.ID,
		Signature:         sig,
		Amount:            payment.Amount,
		Status:            model.PaymentPaid,
		Method:            payment.Method,
		Source:            source,
	}); err != nil {
		return fmt.Errorf("record payment attempt: %w", err)
	}

	log.Printf("payment confirmed for order %s via %s", order.ID, source)

	// Shipment creation must not block the reconciliation response.
	if order.DeliveryProvider == model.ProviderCourier {
		s.shipments.CreateAsync(order.ID)
	}

	return nil
}

func (s *paymentServiceImpl) fail(ctx context.Context, order *model.Order, paymentID string, amount int64) error {
	applied, err := s.orderRepo.MarkFailed(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if !applied {
		return nil
	}

	return s.orderRepo.AppendPaymentAttempt(ctx, &model.PaymentAttempt{
		OrderID:           order.ID,
		ProviderPaymentID: paymentID,
		Amount:            amount,
		Status:            model.PaymentFailed,
		Source:            model.SourceWebhook,
	})
}

func (s *paymentServiceImpl) findOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
