package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"hisab/internal/cli"
	apphttp "hisab/internal/http"
	"hisab/internal/ledger"
	"hisab/internal/services"
	"hisab/internal/storage/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		store   ledger.Store
		refs    apphttp.ReferenceStore
		reports apphttp.ReportSource
	)

	switch cfg.DataBackend {
	case "memory":
		mem := memory.NewStore()
		store, refs, reports = mem, mem, mem
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		store, refs, reports = repo, repo, repo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	}

	amqpClient := cli.InitAMQP(logger, cfg)

	engine := ledger.NewEngine(store)
	auditor := ledger.NewAuditor(store)

	var svc *services.LedgerService
	if amqpClient != nil {
		svc = services.NewLedgerService(engine, amqpClient)
	} else {
		svc = services.NewLedgerService(engine, nil)
	}
	defer svc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, svc, refs, reports, auditor)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting hisab server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
