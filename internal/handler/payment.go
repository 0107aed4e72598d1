package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/SaumyaSingh04/Chow-Back/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	orderService   service.OrderService
	paymentService service.PaymentService
}

func NewPaymentHandler(orderService service.OrderService, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.CreateOrder(ctx, &req)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.paymentService.VerifyPayment(ctx, &req); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"order_id": req.OrderID,
	})
}

func (h *PaymentHandler) PaymentFailure(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentFailureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.paymentService.HandleFailure(ctx, req.OrderID, req.Reason); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"order_id": req.OrderID,
	})
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sig := c.Request().Header.Get("X-Razorpay-Signature")
	eventID := c.Request().Header.Get("X-Razorpay-Event-Id")

	if err := h.paymentService.HandleWebhook(ctx, body, sig, eventID); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.paymentService.ConfirmPayment(ctx, req.OrderID); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "payment confirmed",
	})
}

func (h *PaymentHandler) FixInconsistent(c echo.Context) error {
	ctx := c.Request().Context()

	fixed, err := h.paymentService.FixInconsistent(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"fixed":   fixed,
	})
}

func (h *PaymentHandler) CleanFailed(c echo.Context) error {
	ctx := c.Request().Context()

	deleted, err := h.orderService.CleanupStale(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// mapServiceError translates domain errors into HTTP responses. Business
// conflicts are 409, bad input 400, missing orders 404.
func mapServiceError(err error) error {
	var stockErr *repository.InsufficientStockError

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPaymentAlreadyCaptured),
		errors.Is(err, delivery.ErrProviderMismatch):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		return echo.NewHTTPError(http.StatusConflict, stockErr.Error())
	case errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNotServiceable),
		errors.Is(err, service.ErrNoPaymentID),
		errors.Is(err, service.ErrPaymentNotCaptured),
		errors.Is(err, delivery.ErrInvalidPincode):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
