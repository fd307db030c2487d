// Package main запускает терминальный клиент FoodieHub.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodiehub-client/internal/api"
	"github.com/mmeshcher/foodiehub-client/internal/app"
	"github.com/mmeshcher/foodiehub-client/internal/cart"
	"github.com/mmeshcher/foodiehub-client/internal/config"
	"github.com/mmeshcher/foodiehub-client/internal/session"
	"github.com/mmeshcher/foodiehub-client/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.ParseClient()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	st := store.NewFileStore(cfg.StateDir)
	client := api.NewClient(cfg.APIBaseURL)
	sess := session.NewManager(st, client)
	crt := cart.NewManager(st)

	application := app.New(client, st, sess, crt, newConsoleNotifier(os.Stdout), logger)
	application.Hydrate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ui := newTerminalUI(application, os.Stdin, os.Stdout)
	if err := ui.Run(ctx); err != nil {
		sugar.Fatalw("terminal ui error", "error", err)
	}
}
