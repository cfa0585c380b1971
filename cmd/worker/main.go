package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"archeli/internal/app/bootstrap"
)

// Worker process entrypoint: drains the ledger outbox and publishes terminal
// work item events on the in-process bus.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("archeli worker bootstrap: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("archeli worker: %v", err)
	}
}
