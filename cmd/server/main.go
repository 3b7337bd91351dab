package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/tabsplit/tabsplit/internal/config"
	"github.com/tabsplit/tabsplit/internal/fx"
	"github.com/tabsplit/tabsplit/internal/server"
	"github.com/tabsplit/tabsplit/internal/service"
	"github.com/tabsplit/tabsplit/internal/storage/sqlite"
	"github.com/tabsplit/tabsplit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.DevMode)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rates := fx.Table{}
	if cfg.RatesFile != "" {
		rates, err = fx.LoadFile(cfg.RatesFile)
		if err != nil {
			slog.Error("failed to load exchange rates", "path", cfg.RatesFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Exchange rates loaded", "path", cfg.RatesFile)
	} else {
		slog.Warn("No rates file configured, cross-currency conversion disabled")
	}
	source := fx.Static(rates)

	srv := server.New(
		service.NewGroupService(store),
		service.NewExpenseService(store, source),
		service.NewSettlementService(store),
		service.NewBalanceService(store, source),
	)

	addr := ":" + cfg.Port
	slog.Info("Starting server", "addr", addr, "db", cfg.DBPath)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
