package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"archeli/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server and the rule reload poller.

// @title ArcHeli API
// @version 1.0
// @description Work item intake, rule-based skill routing, and evidence ledger queries.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("archeli api bootstrap: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("archeli api: %v", err)
	}
}
