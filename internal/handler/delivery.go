package handler

import (
	"net/http"
	"strconv"

	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/dto"
	"github.com/labstack/echo/v4"
)

type DeliveryHandler struct {
	router *delivery.Router
}

func NewDeliveryHandler(router *delivery.Router) *DeliveryHandler {
	return &DeliveryHandler{
		router: router,
	}
}

func (h *DeliveryHandler) CheckDelivery(c echo.Context) error {
	ctx := c.Request().Context()

	pincode := c.Param("pincode")
	weight, _ := strconv.Atoi(c.QueryParam("weight"))

	quote, err := h.router.Quote(ctx, pincode, weight)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &dto.DeliveryQuoteResponse{
		Serviceable:   quote.Serviceable,
		Provider:      quote.Provider,
		PricingSource: quote.PricingSource,
		Charge:        quote.Charge,
		DistanceKm:    quote.DistanceKm,
		ETA:           quote.ETA,
		Breakdown:     quote.Breakdown,
		Message:       quote.Message,
	})
}
