package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovapp/sales-ledger/internal/auth"
	"github.com/ovapp/sales-ledger/internal/config"
	"github.com/ovapp/sales-ledger/internal/db"
	"github.com/ovapp/sales-ledger/internal/excel"
	httphandler "github.com/ovapp/sales-ledger/internal/http"
	"github.com/ovapp/sales-ledger/internal/http/middleware"
	"github.com/ovapp/sales-ledger/internal/logger"
	"github.com/ovapp/sales-ledger/internal/pdf"
	"github.com/ovapp/sales-ledger/internal/repository"
	"github.com/ovapp/sales-ledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := repository.NewStore(database)

	clientService := service.NewClientService(store, log)
	contractService := service.NewContractService(store, log)
	orderService := service.NewOrderService(store, contractService, log)
	settingsService := service.NewSettingsService(store)
	dashboardService := service.NewDashboardService(store, contractService, orderService)
	exportService := service.NewExportService(store, orderService, settingsService, excel.NewGenerator(), pdf.NewGenerator())

	scheduler := service.NewStatusScheduler(contractService, cfg.Scheduler.RefreshInterval, log)
	if cfg.Scheduler.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		clientService,
		contractService,
		orderService,
		dashboardService,
		settingsService,
		exportService,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting sales service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
