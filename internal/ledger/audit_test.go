package ledger_test

import (
	"context"
	"testing"

	"hisab/internal/core"
	"hisab/internal/ledger"
	"hisab/internal/storage/memory"
)

func TestAuditDetectsDrift(t *testing.T) {
	store := memory.NewStore()
	e := ledger.NewEngine(store)
	auditor := ledger.NewAuditor(store)

	mustCreate(t, e, core.Transaction{
		Type:    core.Income,
		Amount:  core.Money{Paise: 10000},
		Date:    core.NewDate(2025, 4, 1),
		Posting: true,
		FundTo:  core.FundCash,
	})

	// Mutate the stored balance behind the engine's back.
	store.SetBalance(core.FundCash, 12500)

	report, err := auditor.Audit(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if report.Clean() {
		t.Fatal("expected a dirty report")
	}
	for _, f := range report.Funds {
		if f.Fund != core.FundCash {
			if f.Drift != 0 {
				t.Errorf("unexpected drift on %s: %d", f.Fund, f.Drift)
			}
			continue
		}
		if f.Stored != 12500 || f.Derived != 10000 || f.Drift != 2500 {
			t.Errorf("CASH audit = %+v, want stored 12500 derived 10000 drift 2500", f)
		}
	}
	if report.Discrepancy != 2500 {
		t.Errorf("discrepancy = %d, want 2500", report.Discrepancy)
	}
}

func TestAuditReportsButNeverCorrects(t *testing.T) {
	store := memory.NewStore()
	auditor := ledger.NewAuditor(store)

	store.SetBalance(core.FundOnlineY, -300)

	if _, err := auditor.Audit(context.Background()); err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	balances, err := store.FundBalances(context.Background())
	if err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	if balances[core.FundOnlineY] != -300 {
		t.Errorf("audit must not rewrite balances, got %d", balances[core.FundOnlineY])
	}
}

func TestAuditTypeTotalsSkipNonPosting(t *testing.T) {
	store := memory.NewStore()
	e := ledger.NewEngine(store)
	auditor := ledger.NewAuditor(store)

	mustCreate(t, e, core.Transaction{
		Type: core.Contribution, Amount: core.Money{Paise: 2000},
		Date: core.NewDate(2025, 4, 1), Posting: true,
		FundTo: core.FundCash, PersonID: "p_asha",
	})
	mustCreate(t, e, core.Transaction{
		Type: core.Income, Amount: core.Money{Paise: 5000},
		Date: core.NewDate(2025, 4, 2), Posting: true,
		FundTo: core.FundOnlineA,
	})
	mustCreate(t, e, core.Transaction{
		Type: core.Expense, Amount: core.Money{Paise: 1500},
		Date: core.NewDate(2025, 4, 3), Posting: true,
		FundFrom: core.FundCash, CategoryID: "cat_food",
	})
	// Informational record, must not count anywhere.
	mustCreate(t, e, core.Transaction{
		Type: core.Income, Amount: core.Money{Paise: 77777},
		Date: core.NewDate(2025, 4, 4), Posting: false,
	})

	report, err := auditor.Audit(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if report.Contributions != 2000 {
		t.Errorf("contributions = %d, want 2000", report.Contributions)
	}
	if report.Income != 5000 {
		t.Errorf("income = %d, want 5000", report.Income)
	}
	if report.Expenses != 1500 {
		t.Errorf("expenses = %d, want 1500", report.Expenses)
	}
	if report.StoredTotal != 5500 {
		t.Errorf("stored total = %d, want 5500", report.StoredTotal)
	}
	if report.Discrepancy != 0 {
		t.Errorf("discrepancy = %d, want 0", report.Discrepancy)
	}
}
