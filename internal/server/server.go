package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lingua-daily/internal/handler"
	"lingua-daily/internal/service"
)

type Server struct {
	echo                *echo.Echo
	paymentHandler      *handler.PaymentHandler
	subscriptionHandler *handler.SubscriptionHandler
	adminHandler        *handler.AdminHandler
	configHandler       *handler.ConfigHandler
	adminService        service.AdminService
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(
	paymentHandler *handler.PaymentHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	adminHandler *handler.AdminHandler,
	configHandler *handler.ConfigHandler,
	adminService service.AdminService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:                e,
		paymentHandler:      paymentHandler,
		subscriptionHandler: subscriptionHandler,
		adminHandler:        adminHandler,
		configHandler:       configHandler,
		adminService:        adminService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]bool{"ok": true})
	})

	api := s.echo.Group("/api")
	api.GET("/config", s.configHandler.PublicConfig)
	api.GET("/daily-sentence", s.subscriptionHandler.DailySentence)
	api.POST("/subscribe", s.subscriptionHandler.Subscribe)
	api.POST("/unsubscribe", s.subscriptionHandler.Unsubscribe)
	api.POST("/subscribe/start", s.paymentHandler.StartOrder)
	api.POST("/admin/send-daily", s.subscriptionHandler.SendDaily)

	// -------- payments --------
	api.GET("/payments/status", s.paymentHandler.SolanaStatus)
	api.GET("/eth/payments/status", s.paymentHandler.EVMStatus)
	api.POST("/aptos/verify", s.paymentHandler.VerifyChain("aptos"))
	api.POST("/sui/verify", s.paymentHandler.VerifyChain("sui"))

	s.echo.POST("/tx/usdc", s.paymentHandler.BuildTx)

	// -------- admin --------
	s.echo.POST("/admin/login", s.adminHandler.Login)
	admin := s.echo.Group("/admin", handler.AdminAuthMiddleware(s.adminService))
	admin.GET("/dashboard", s.adminHandler.Dashboard)
	admin.POST("/cancel-subscription", s.adminHandler.CancelSubscription)
	admin.POST("/extend-subscription", s.adminHandler.ExtendSubscription)
	admin.POST("/cleanup-pending", s.adminHandler.CleanupPending)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
