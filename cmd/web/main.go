// The web command runs the listing analytics dashboard API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"marketlens/internal/app"
)

func main() {
	// Optional .env for local development; env vars win either way.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
