package main

import (
	"context"
	"os"

	"butce/internal/amqp"
	"butce/internal/cli"
	applog "butce/internal/log"
	"butce/internal/services"
	"butce/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting butce-worker")

	cli.RequirePersistentBackend(logger, cfg)

	// The worker consumes rather than publishes, so no dispatcher here.
	result := cli.InitBackend(context.Background(), logger, cfg, false)
	defer result.Cleanup()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	notifyWorker := worker.NewNotifyWorker(result.Store, services.NewBudgetService(result.Store, nil))

	go func() {
		if err := amqpClient.ConsumeRefresh(ctx, notifyWorker.HandleRefresh); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			cancel()
		}
	}()

	go notifyWorker.RunSweep(ctx, cfg.NotifySweepInterval)

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.NotifySweepInterval.String())

	<-ctx.Done()
	logger.Info("Worker stopped")
}
