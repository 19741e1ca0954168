package main

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hisab/internal/amqp"
	"hisab/internal/cli"
	"hisab/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting hisab-auditor", "interval", cfg.AuditInterval)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	auditor := ledger.NewAuditor(repo)

	ctx := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, ctx := errgroup.WithContext(ctx)

	// Event-driven audits: re-check consistency right after each mutation.
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeLedgerEvents(ctx, func(event *amqp.LedgerEvent) error {
				return runAudit(ctx, auditor, "event", event.Op, event.ID)
			})
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	} else {
		logger.Info("Skipping event-driven audits - no AMQP client available")
	}

	// Periodic sweep catches drift even when no events arrive.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.AuditInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := runAudit(ctx, auditor, "sweep", "", ""); err != nil {
					logger.Error("Periodic audit failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Auditor stopped with error", "error", err)
	}
	logger.Info("Auditor stopped gracefully")
}

func runAudit(ctx context.Context, auditor *ledger.Auditor, trigger, op, id string) error {
	report, err := auditor.Audit(ctx)
	if err != nil {
		return err
	}

	if report.Clean() && report.Discrepancy == 0 {
		slog.InfoContext(ctx, "Audit clean",
			"trigger", trigger,
			"op", op,
			"id", id,
			"stored_total", report.StoredTotal)
		return nil
	}

	for _, f := range report.Funds {
		if f.Drift != 0 {
			slog.ErrorContext(ctx, "Fund balance drift detected",
				"trigger", trigger,
				"fund", f.Fund,
				"stored_paise", f.Stored,
				"derived_paise", f.Derived,
				"drift_paise", f.Drift)
		}
	}
	if report.Discrepancy != 0 {
		slog.ErrorContext(ctx, "Ledger discrepancy detected",
			"trigger", trigger,
			"discrepancy_paise", report.Discrepancy,
			"stored_total", report.StoredTotal)
	}
	return nil
}
