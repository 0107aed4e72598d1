package handler

import (
	"net/http"
	"strconv"

	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/SaumyaSingh04/Chow-Back/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	return h.list(c, repository.ListFilter{Successful: true})
}

func (h *OrderHandler) ListFailedOrders(c echo.Context) error {
	return h.list(c, repository.ListFilter{Failed: true})
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	return h.list(c, repository.ListFilter{
		Successful: true,
		CustomerID: c.Param("customerID"),
	})
}

func (h *OrderHandler) list(c echo.Context, filter repository.ListFilter) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.orderService.ListOrders(ctx, filter, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status required")
	}

	if err := h.orderService.UpdateStatus(ctx, c.Param("id"), req.Status); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
