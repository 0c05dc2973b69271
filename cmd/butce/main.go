package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"butce/internal/cache"
	"butce/internal/cli"
	apphttp "butce/internal/http"
	applog "butce/internal/log"
	"butce/internal/notify"
	"butce/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentApp)

	result := cli.InitBackend(context.Background(), logger, cfg, true)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	// Every refresh signal also drops the affected cached dashboard, so the
	// API serves fresh aggregates right after its own mutations.
	dashboards := services.NewDashboardService(result.Store)
	dispatcher := notify.Fanout(result.Dispatcher, dashboards)

	budgets := services.NewBudgetService(result.Store, dispatcher)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Users:      services.NewUserService(result.Store, dispatcher),
		Budgets:    budgets,
		Assets:     services.NewAssetService(result.Store, budgets, dispatcher),
		Expenses:   services.NewExpenseService(result.Store, dispatcher),
		Portfolio:  services.NewPortfolioService(result.Store, dispatcher),
		Dashboards: dashboards,
		Store:      result.Store,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	sweeper := cache.NewSweeper()
	sweeper.Register(dashboards)
	go sweeper.Run(ctx, time.Minute)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting butce server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
