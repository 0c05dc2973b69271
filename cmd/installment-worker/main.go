package main

import (
	"context"

	"butce/internal/cli"
	applog "butce/internal/log"
	"butce/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting installment-worker")

	cli.RequirePersistentBackend(logger, cfg)

	result := cli.InitBackend(context.Background(), logger, cfg, true)
	defer result.Cleanup()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	logger.Info("Worker running",
		"check_interval", cfg.InstallmentCheckInterval.String(),
		"batch_size", cfg.InstallmentBatchSize)

	w := worker.NewInstallmentWorker(result.Store, result.Dispatcher, cfg.InstallmentBatchSize)
	w.Run(ctx, cfg.InstallmentCheckInterval)

	logger.Info("Worker stopped")
}
