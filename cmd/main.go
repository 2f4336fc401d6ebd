package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sales-service/internal/handler"
	mid "sales-service/internal/middleware"
	"sales-service/internal/sales"
	"sales-service/internal/store"
	"sales-service/pkg/config"
	"sales-service/pkg/database"
	"sales-service/pkg/jwtutil"
	"sales-service/pkg/logger"
	"sales-service/prometheus"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting sales-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize the backing store
	var st store.Store
	switch appConfig.DB.Driver {
	case "memory":
		st = store.NewMemoryStore()
		log.Warn("Using in-memory store; data will not survive restarts")
	default:
		if err := database.InitDB(appConfig); err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		st = store.NewGormStore(database.GetDB())
		log.Info("Database connection established")
	}

	recorder := sales.NewRecorder(st, appConfig.Sales.AllowOversell)
	if appConfig.Sales.AllowOversell {
		log.Warn("Oversell enabled: sales may drive stock negative")
	}

	productHandler := handler.NewProductHandler(st)
	saleHandler := handler.NewSaleHandler(st, recorder)
	clientHandler := handler.NewClientHandler(st)
	reportHandler := handler.NewReportHandler(st)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Product API routes - Apply auth middleware to validate JWT and extract tenant ID
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", productHandler.List)
	productAPI.GET("/:id", productHandler.Get)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)

	// Sale API routes
	saleAPI := e.Group("/api/sales", mid.AuthMiddleware)
	saleAPI.GET("", saleHandler.List)
	saleAPI.GET("/:id", saleHandler.Get)
	saleAPI.POST("", saleHandler.Create)

	// Client API routes
	clientAPI := e.Group("/api/clients", mid.AuthMiddleware)
	clientAPI.GET("", clientHandler.List)
	clientAPI.POST("", clientHandler.Create)
	clientAPI.PUT("/:id", clientHandler.Update)
	clientAPI.DELETE("/:id", clientHandler.Delete)

	// Reporting routes
	reportAPI := e.Group("/api/reports", mid.AuthMiddleware)
	reportAPI.GET("/metrics", reportHandler.Metrics)
	reportAPI.GET("/monthly", reportHandler.Monthly)
	reportAPI.GET("/top-products", reportHandler.TopProducts)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
