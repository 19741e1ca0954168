package ledger_test

import (
	"context"
	"errors"
	"testing"

	"hisab/internal/core"
	"hisab/internal/ledger"
	"hisab/internal/storage/memory"
)

func newEngine(t *testing.T) (*ledger.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return ledger.NewEngine(store), store
}

func mustCreate(t *testing.T, e *ledger.Engine, txn core.Transaction) core.Transaction {
	t.Helper()
	created, err := e.Create(context.Background(), txn)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return created
}

func balances(t *testing.T, e *ledger.Engine) map[core.Fund]int64 {
	t.Helper()
	got, err := e.Balances(context.Background())
	if err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	return got
}

func assertBalances(t *testing.T, e *ledger.Engine, want map[core.Fund]int64) {
	t.Helper()
	got := balances(t, e)
	for _, f := range core.Funds() {
		if got[f] != want[f] {
			t.Errorf("balance of %s = %d, want %d", f, got[f], want[f])
		}
	}
}

func TestCreateIncomeCreditsFund(t *testing.T) {
	e, _ := newEngine(t)

	created := mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundOnlineA,
	})
	if created.ID == "" {
		t.Error("expected an assigned id")
	}

	assertBalances(t, e, map[core.Fund]int64{core.FundOnlineA: 10000})
}

func TestCreateTransferMovesBetweenFunds(t *testing.T) {
	e, _ := newEngine(t)

	mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})
	mustCreate(t, e, core.Transaction{
		Type:     core.Transfer,
		Amount:   core.Money{Paise: 5000},
		Date:     core.NewDate(2025, 4, 2),
		Posting:  true,
		FundFrom: core.FundCash,
		FundTo:   core.FundOnlineA,
	})

	assertBalances(t, e, map[core.Fund]int64{
		core.FundCash:    5000,
		core.FundOnlineA: 5000,
	})
}

func TestUpdateReversesOldDeltasBeforeApplyingNew(t *testing.T) {
	e, _ := newEngine(t)

	mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})
	transfer := mustCreate(t, e, core.Transaction{
		Type:     core.Transfer,
		Amount:   core.Money{Paise: 5000},
		Date:     core.NewDate(2025, 4, 2),
		Posting:  true,
		FundFrom: core.FundCash,
		FundTo:   core.FundOnlineA,
	})

	// Retype the transfer as an expense out of ONLINE_A. CASH must return
	// to its pre-transfer balance and ONLINE_A must net the two changes.
	_, err := e.Update(context.Background(), transfer.ID, core.Transaction{
		Type:       core.Expense,
		Amount:     core.Money{Paise: 2000},
		Date:       core.NewDate(2025, 4, 2),
		Posting:    true,
		FundFrom:   core.FundOnlineA,
		CategoryID: "cat_rent",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	assertBalances(t, e, map[core.Fund]int64{
		core.FundCash:    10000,
		core.FundOnlineA: -2000,
	})
}

func TestUpdateCanUnpost(t *testing.T) {
	e, _ := newEngine(t)

	income := mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})

	unposted := income
	unposted.Posting = false
	if _, err := e.Update(context.Background(), income.ID, unposted); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	assertBalances(t, e, map[core.Fund]int64{})

	// Posting it again restores the effect.
	if _, err := e.Update(context.Background(), income.ID, income); err != nil {
		t.Fatalf("repost failed: %v", err)
	}
	assertBalances(t, e, map[core.Fund]int64{core.FundCash: 10000})
}

func TestDeleteReversesDeltas(t *testing.T) {
	e, _ := newEngine(t)

	income := mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundOnlineY,
	})

	if err := e.Delete(context.Background(), income.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	assertBalances(t, e, map[core.Fund]int64{})
	if _, err := e.Get(context.Background(), income.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSameFundTransferRejected(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.Create(context.Background(), core.Transaction{
		Type:     core.Transfer,
		Amount:   core.Money{Paise: 5000},
		Date:     core.NewDate(2025, 4, 1),
		Posting:  true,
		FundFrom: core.FundCash,
		FundTo:   core.FundCash,
	})
	if !errors.Is(err, core.ErrSameFund) {
		t.Fatalf("expected ErrSameFund, got %v", err)
	}

	assertBalances(t, e, map[core.Fund]int64{})
}

func TestInvalidCreateLeavesNoRecord(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.Create(context.Background(), core.Transaction{
		ID:      "t_rejected",
		Type:    core.Income,
		Amount:  core.Money{Paise: 0},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := e.Get(context.Background(), "t_rejected"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("rejected record must not be stored, got %v", err)
	}
	assertBalances(t, e, map[core.Fund]int64{})
}

func TestDuplicateIDRejectedAtomically(t *testing.T) {
	e, _ := newEngine(t)

	mustCreate(t, e, core.Transaction{
		ID:      "t_dup",
		Type:    core.Income,
		Amount:  core.Money{Paise: 1000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})

	_, err := e.Create(context.Background(), core.Transaction{
		ID:      "t_dup",
		Type:    core.Income,
		Amount:  core.Money{Paise: 9000},
		Date:    core.NewDate(2025, 4, 2),
		Posting: true,
		FundTo:  core.FundCash,
	})
	if !errors.Is(err, ledger.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	// Only the first record's effect must be visible.
	assertBalances(t, e, map[core.Fund]int64{core.FundCash: 1000})
}

func TestUpdateMissingIDLeavesBalancesUntouched(t *testing.T) {
	e, _ := newEngine(t)

	mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 3000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})

	_, err := e.Update(context.Background(), "t_missing", core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 100},
		Date:    core.NewDate(2025, 4, 2),
		Posting: true,
		FundTo:  core.FundCash,
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := e.Delete(context.Background(), "t_missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	assertBalances(t, e, map[core.Fund]int64{core.FundCash: 3000})
}

func TestListPagination(t *testing.T) {
	e, _ := newEngine(t)

	for i := 0; i < ledger.PageSize+5; i++ {
		mustCreate(t, e, core.Transaction{
			Type:    core.Income,
			Amount:  core.Money{Paise: 100},
			Date:    core.NewDate(2025, 4, 1+i%28),
			Posting: true,
			FundTo:  core.FundCash,
		})
	}

	page1, err := e.List(context.Background(), ledger.Filter{Page: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1) != ledger.PageSize {
		t.Errorf("page 1 size = %d, want %d", len(page1), ledger.PageSize)
	}

	page2, err := e.List(context.Background(), ledger.Filter{Page: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("page 2 size = %d, want 5", len(page2))
	}
}

func TestAuditCleanAfterEveryMutation(t *testing.T) {
	e, store := newEngine(t)
	auditor := ledger.NewAuditor(store)

	assertClean := func(stage string) {
		t.Helper()
		report, err := auditor.Audit(context.Background())
		if err != nil {
			t.Fatalf("%s: audit failed: %v", stage, err)
		}
		if !report.Clean() {
			t.Errorf("%s: audit not clean: %+v", stage, report.Funds)
		}
		if report.Discrepancy != 0 {
			t.Errorf("%s: discrepancy = %d, want 0", stage, report.Discrepancy)
		}
	}

	income := mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})
	assertClean("after create")

	transfer := mustCreate(t, e, core.Transaction{
		Type:     core.Transfer,
		Amount:   core.Money{Paise: 4000},
		Date:     core.NewDate(2025, 4, 2),
		Posting:  true,
		FundFrom: core.FundCash,
		FundTo:   core.FundOnlineA,
	})
	assertClean("after transfer")

	_, err := e.Update(context.Background(), transfer.ID, core.Transaction{
		Type:       core.Expense,
		Amount:     core.Money{Paise: 500},
		Date:       core.NewDate(2025, 4, 3),
		Posting:    true,
		FundFrom:   core.FundCash,
		CategoryID: "cat_misc",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	assertClean("after update")

	if err := e.Delete(context.Background(), income.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	assertClean("after delete")
}
