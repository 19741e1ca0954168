package services

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/ledger"
)

// EventPublisher announces committed ledger mutations. Nil-able: without a
// broker the service simply skips publishing.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService fronts the posting engine for the HTTP layer and emits a
// mutation event after each committed write. A publish failure is logged
// and swallowed: the write has already committed and must not be undone.
type LedgerService struct {
	engine    *ledger.Engine
	publisher EventPublisher
}

func NewLedgerService(engine *ledger.Engine, publisher EventPublisher) *LedgerService {
	return &LedgerService{engine: engine, publisher: publisher}
}

func (s *LedgerService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.engine.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.OpCreate, created.ID)
	return created, nil
}

func (s *LedgerService) Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	updated, err := s.engine.Update(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.OpUpdate, id)
	return updated, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.engine.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDelete, id)
	return nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.engine.Get(ctx, id)
}

func (s *LedgerService) List(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	return s.engine.List(ctx, f)
}

func (s *LedgerService) Balances(ctx context.Context) (map[core.Fund]int64, error) {
	return s.engine.Balances(ctx)
}

func (s *LedgerService) publish(ctx context.Context, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(op, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err,
			"op", op,
			"id", id,
			"component", "ledger_service")
	}
}

// Close releases the publisher connection if one is attached.
func (s *LedgerService) Close() error {
	if closer, ok := s.publisher.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
