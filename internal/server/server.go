package server

import (
	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/handler"
	chowMiddleware "github.com/SaumyaSingh04/Chow-Back/internal/middleware"
	"github.com/SaumyaSingh04/Chow-Back/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	jwtSecret       string
	paymentHandler  *handler.PaymentHandler
	orderHandler    *handler.OrderHandler
	deliveryHandler *handler.DeliveryHandler
	shipmentHandler *handler.ShipmentHandler
}

func NewServer(
	jwtSecret string,
	orderService service.OrderService,
	paymentService service.PaymentService,
	shipmentService service.ShipmentService,
	router *delivery.Router,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		jwtSecret:       jwtSecret,
		paymentHandler:  handler.NewPaymentHandler(orderService, paymentService),
		orderHandler:    handler.NewOrderHandler(orderService),
		deliveryHandler: handler.NewDeliveryHandler(router),
		shipmentHandler: handler.NewShipmentHandler(shipmentService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	admin := chowMiddleware.AdminAuth(s.jwtSecret)

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- delivery --------
	api.GET("/delivery/check/:pincode", s.deliveryHandler.CheckDelivery)

	// -------- payment / reconciliation --------
	payment := api.Group("/payment")
	payment.POST("/create-order", s.paymentHandler.CreateOrder)
	payment.POST("/verify", s.paymentHandler.VerifyPayment)
	payment.POST("/failure", s.paymentHandler.PaymentFailure)
	payment.POST("/webhook", s.paymentHandler.Webhook)
	payment.POST("/confirm", s.paymentHandler.ConfirmPayment, admin)
	payment.POST("/fix-inconsistent", s.paymentHandler.FixInconsistent, admin)
	payment.POST("/clean-failed", s.paymentHandler.CleanFailed, admin)

	// -------- orders --------
	orders := api.Group("/orders")
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/failed", s.orderHandler.ListFailedOrders)
	orders.GET("/my/:customerID", s.orderHandler.ListMyOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.PATCH("/:id/status", s.orderHandler.UpdateStatus, admin)

	// -------- shipments --------
	shipments := api.Group("/shipments")
	shipments.GET("/track/:waybill", s.shipmentHandler.Track)
	shipments.POST("/retry", s.shipmentHandler.RetryFailed, admin)
	shipments.GET("/interventions", s.shipmentHandler.NeedingIntervention, admin)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
