package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/epeers/dashboard/config"
	_ "github.com/epeers/dashboard/docs"
	"github.com/epeers/dashboard/internal/cache"
	"github.com/epeers/dashboard/internal/catalog"
	"github.com/epeers/dashboard/internal/database"
	"github.com/epeers/dashboard/internal/handlers"
	"github.com/epeers/dashboard/internal/middleware"
	"github.com/epeers/dashboard/internal/repository"
	"github.com/epeers/dashboard/internal/services"
	"github.com/epeers/dashboard/internal/yahoo"
)

// @title B3 Portfolio Dashboard API
// @version 1.0
// @description Buy-and-hold performance of IBOV stocks and IFIX REITs.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Create context for initialization
	ctx := context.Background()

	// Load the ticker catalog once; it does not change while running
	cat := catalog.NewLoader(cfg.IBOVPath, cfg.IFIXPath, cfg.TickerSuffix).Load()
	log.Infof("catalog: %d stocks, %d REITs", len(cat.Stocks), len(cat.REITs))

	// Initialize market data client
	yahooClient := yahoo.NewClient()
	if cfg.YahooBaseURL != "" {
		yahooClient = yahoo.NewClientWithBaseURL(cfg.YahooBaseURL)
	}

	// Optional Postgres price store
	var store services.PriceStore
	if cfg.PGURL != "" {
		db, err := database.New(ctx, cfg.PGURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		store = repository.NewPriceRepository(db.Pool)
	} else {
		log.Info("PG_URL not set, prices are kept in memory only")
	}

	// Initialize services
	memCache := cache.NewMemoryCache()
	pricingSvc := services.NewPricingService(yahooClient, store, memCache, cfg.FetchConcurrency)
	dashboardSvc := services.NewDashboardService(cat, pricingSvc, services.DashboardConfig{
		History:        cfg.History,
		Suffix:         cfg.TickerSuffix,
		StakePerAsset:  cfg.StakePerAsset,
		DefaultCapital: cfg.DefaultCapital,
		Currency:       cfg.Currency,
		Policy:         cfg.MissingData,
	})

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)

	// Setup Gin router
	if cfg.LogLevel < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	dashboardHandler.Register(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
