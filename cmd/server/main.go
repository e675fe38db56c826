package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/repository/sheets"
	"github.com/mbazira/agrostock/internal/scheduler"
	"github.com/mbazira/agrostock/internal/server/handlers"
	"github.com/mbazira/agrostock/internal/server/router"
	alertsvc "github.com/mbazira/agrostock/internal/service/alerts"
	procurementsvc "github.com/mbazira/agrostock/internal/service/procurement"
	reportingsvc "github.com/mbazira/agrostock/internal/service/reporting"
	salesvc "github.com/mbazira/agrostock/internal/service/sales"
	staffingsvc "github.com/mbazira/agrostock/internal/service/staffing"
	"github.com/mbazira/agrostock/internal/service/stock"
	"github.com/mbazira/agrostock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	db := repo.Database()
	ledgerRepo := mongodb.NewLedgerRepository(db)
	procurementRepo := mongodb.NewProcurementRepository(db)
	saleRepo := mongodb.NewSaleRepository(db)
	rosterRepo := mongodb.NewRosterRepository(db)
	alertRepo := mongodb.NewAlertRepository(db)

	// Sheets export is optional; the scheduler simply skips it when absent.
	var sheetsRepo sheets.Repository
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("sheets export disabled, GOOGLE_SHEET_REPORT_ID not set")
	}

	engine := stock.NewEngine(ledgerRepo, baseLogger.Named("svc.stock"))
	alertSvc := alertsvc.NewService(alertRepo, baseLogger.Named("svc.alerts"))
	procurementSvc := procurementsvc.NewService(engine, procurementRepo, cfg.Ledger, baseLogger.Named("svc.procurement"))
	saleSvc := salesvc.NewService(engine, saleRepo, ledgerRepo, alertSvc, cfg.Ledger, baseLogger.Named("svc.sales"))
	staffingSvc := staffingsvc.NewService(rosterRepo, baseLogger.Named("svc.staffing"))
	reportingSvc := reportingsvc.NewService(ledgerRepo, sheetsRepo, baseLogger.Named("svc.reporting"))

	routerHandlers := router.Handlers{
		Auth:        handlers.NewAuthHandler(cfg.Auth, baseLogger.Named("handlers.auth")),
		Ledger:      handlers.NewLedgerHandler(ledgerRepo, alertRepo, reportingSvc, baseLogger.Named("handlers.ledger")),
		Procurement: handlers.NewProcurementHandler(procurementSvc, procurementRepo, baseLogger.Named("handlers.procurement")),
		Sales:       handlers.NewSalesHandler(saleSvc, saleRepo, baseLogger.Named("handlers.sales")),
		Roster:      handlers.NewRosterHandler(staffingSvc, rosterRepo, baseLogger.Named("handlers.roster")),
	}
	ginEngine := router.New(cfg, routerHandlers, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
