package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/ticketxpress/ticketxpress/config"
	"github.com/ticketxpress/ticketxpress/internal/handlers"
	"github.com/ticketxpress/ticketxpress/internal/middleware"
	"github.com/ticketxpress/ticketxpress/internal/mirror"
	"github.com/ticketxpress/ticketxpress/internal/ticketing"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := logrus.New()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	m, err := mirror.Open(cfg.MirrorPath)
	if err != nil {
		return fmt.Errorf("failed to open offline mirror: %v", err)
	}
	defer m.Close()

	engine := ticketing.NewEngine(db)
	service := ticketing.NewService(engine, m, cfg.StoreTimeout, log)

	r := gin.Default()

	setupRoutes(r, cfg, service)

	log.WithField("port", cfg.Port).Info("starting ticket server")
	return r.Run(":" + cfg.Port)
}

func setupRoutes(r *gin.Engine, cfg *config.Config, service *ticketing.Service) {
	r.Use(middleware.TicketingMiddleware(service))

	api := r.Group("/api")
	api.Use(middleware.CORSMiddleware())
	{
		api.POST("/next-ticket-number", handlers.NextTicketNumber)
		api.POST("/generate-ticket", handlers.GenerateTicket)
		api.POST("/scan-ticket", handlers.ScanTicket)
		api.POST("/scan-payload", handlers.ScanPayload)
		api.GET("/dashboard", handlers.GetDashboard)
		api.GET("/tickets/:ticketNumber/qr", handlers.TicketQR)
	}

	if cfg.EnableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
