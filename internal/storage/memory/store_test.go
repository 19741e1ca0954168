package memory

import (
	"context"
	"errors"
	"testing"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

func TestInTxRestoresSnapshotOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seed := core.Transaction{
		ID: "t_keep", Type: core.Income, Amount: core.Money{Paise: 500},
		Date: core.NewDate(2025, 4, 1), Posting: true, FundTo: core.FundCash,
	}
	err := s.InTx(ctx, func(tx ledger.Tx) error {
		if err := tx.InsertTransaction(ctx, seed); err != nil {
			return err
		}
		return tx.ApplyDeltas(ctx, seed.Deltas())
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	sentinel := errors.New("boom")
	err = s.InTx(ctx, func(tx ledger.Tx) error {
		if err := tx.DeleteTransaction(ctx, "t_keep"); err != nil {
			return err
		}
		if err := tx.ApplyDeltas(ctx, map[core.Fund]int64{core.FundCash: -500}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	if _, err := s.GetTransaction(ctx, "t_keep"); err != nil {
		t.Errorf("record should survive the rollback: %v", err)
	}
	balances, _ := s.FundBalances(ctx)
	if balances[core.FundCash] != 500 {
		t.Errorf("balance = %d, want 500", balances[core.FundCash])
	}
}

func TestListNewestFirstAndPaged(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2025, 4, 3),
		core.NewDate(2025, 4, 1),
		core.NewDate(2025, 4, 2),
	}
	for i, d := range dates {
		err := s.InTx(ctx, func(tx ledger.Tx) error {
			return tx.InsertTransaction(ctx, core.Transaction{
				ID: "t_" + string(rune('a'+i)), Type: core.Income,
				Amount: core.Money{Paise: 100}, Date: d, Posting: false,
			})
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	out, err := s.ListTransactions(ctx, ledger.Filter{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0].ID != "t_a" || out[1].ID != "t_c" || out[2].ID != "t_b" {
		t.Errorf("order = %v", ids(out))
	}

	empty, err := s.ListTransactions(ctx, ledger.Filter{Page: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("page past the end should be empty, got %v", ids(empty))
	}
}

func ids(txns []core.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}
