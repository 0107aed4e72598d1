package handler

import (
	"net/http"

	"github.com/SaumyaSingh04/Chow-Back/internal/service"
	"github.com/labstack/echo/v4"
)

type ShipmentHandler struct {
	shipmentService service.ShipmentService
}

func NewShipmentHandler(shipmentService service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
	}
}

func (h *ShipmentHandler) RetryFailed(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.shipmentService.RetryFailed(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *ShipmentHandler) NeedingIntervention(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.shipmentService.NeedingIntervention(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(orders),
		"orders": orders,
	})
}

func (h *ShipmentHandler) Track(c echo.Context) error {
	ctx := c.Request().Context()

	waybill := c.Param("waybill")
	if waybill == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "waybill required")
	}

	result, err := h.shipmentService.Track(ctx, waybill)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
