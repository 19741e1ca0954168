package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"hisab/internal/core"
)

// Engine is the sole writer of transaction records and fund balances.
// Every mutation validates the record, then applies the record change and
// its balance deltas inside one store transaction, so stored balances
// always equal the net effect of all posting transactions.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// NewID generates an opaque transaction id.
func NewID() string {
	return "t_" + uuid.NewString()
}

// Create validates t and persists it together with its balance deltas.
// An empty id is assigned one. Fails with ErrDuplicateID if the id is
// already taken, leaving all state untouched.
func (e *Engine) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = NewID()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := e.store.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, t.Deltas())
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction %s: %w", t.ID, err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"txn_type", t.Type,
		"amount_paise", t.Amount.Paise,
		"posting", t.Posting,
		"component", "ledger",
		"operation", "create")
	return t, nil
}

// Update fully replaces the record with id. The old record's deltas are
// reversed before the new record's are applied; the symmetry keeps the
// balance invariant regardless of which fields changed, including the
// posting flag itself. Fails with ErrNotFound if id is absent.
func (e *Engine) Update(ctx context.Context, id string, next core.Transaction) (core.Transaction, error) {
	next.ID = id
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := e.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, negate(old.Deltas())); err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, next.Deltas()); err != nil {
			return err
		}
		return tx.ReplaceTransaction(ctx, next)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction replaced",
		"id", id,
		"txn_type", next.Type,
		"amount_paise", next.Amount.Paise,
		"posting", next.Posting,
		"component", "ledger",
		"operation", "update")
	return next, nil
}

// Delete removes the record with id after reversing its balance deltas.
// Fails with ErrNotFound if id is absent.
func (e *Engine) Delete(ctx context.Context, id string) error {
	err := e.store.InTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, negate(old.Deltas())); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"id", id,
		"component", "ledger",
		"operation", "delete")
	return nil
}

// Get returns the record with id without touching balances.
func (e *Engine) Get(ctx context.Context, id string) (core.Transaction, error) {
	return e.store.GetTransaction(ctx, id)
}

// List returns one page of records matching f, newest first.
func (e *Engine) List(ctx context.Context, f Filter) ([]core.Transaction, error) {
	return e.store.ListTransactions(ctx, f)
}

// Balances returns the stored balance of every fund.
func (e *Engine) Balances(ctx context.Context) (map[core.Fund]int64, error) {
	return e.store.FundBalances(ctx)
}

func negate(deltas map[core.Fund]int64) map[core.Fund]int64 {
	out := make(map[core.Fund]int64, len(deltas))
	for f, v := range deltas {
		out[f] = -v
	}
	return out
}
