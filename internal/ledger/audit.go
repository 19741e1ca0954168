package ledger

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

// FundAudit compares one fund's stored balance against the balance
// re-derived from the full transaction history.
type FundAudit struct {
	Fund    core.Fund
	Stored  int64
	Derived int64
	Drift   int64 // stored - derived
}

// Report is the outcome of one consistency audit. Drift is reported,
// never corrected: a non-zero drift means the posting engine has a bug or
// balances were mutated out of band.
type Report struct {
	Funds []FundAudit

	// Totals over posting transactions only.
	Contributions int64
	Income        int64
	Expenses      int64

	StoredTotal int64
	// Discrepancy is StoredTotal - (Contributions + Income - Expenses),
	// a cheap global sanity figure independent of the per-fund breakdown.
	Discrepancy int64
}

// Clean reports whether every fund's drift is zero.
func (r Report) Clean() bool {
	for _, f := range r.Funds {
		if f.Drift != 0 {
			return false
		}
	}
	return true
}

// Auditor re-derives fund balances from history and compares them with
// the stored ones.
type Auditor struct {
	store Store
}

func NewAuditor(store Store) *Auditor {
	return &Auditor{store: store}
}

// Audit reads history and balances inside one store transaction so the
// comparison sees a single consistent snapshot.
func (a *Auditor) Audit(ctx context.Context) (Report, error) {
	var report Report

	err := a.store.InTx(ctx, func(tx Tx) error {
		txns, err := tx.AllTransactions(ctx)
		if err != nil {
			return err
		}
		stored, err := tx.FundBalances(ctx)
		if err != nil {
			return err
		}

		derived := make(map[core.Fund]int64, len(core.Funds()))
		for _, t := range txns {
			for _, f := range core.Funds() {
				derived[f] += t.Effect(f)
			}
			if t.Posting {
				switch t.Type {
				case core.Contribution:
					report.Contributions += t.Amount.Paise
				case core.Income:
					report.Income += t.Amount.Paise
				case core.Expense:
					report.Expenses += t.Amount.Paise
				}
			}
		}

		for _, f := range core.Funds() {
			report.Funds = append(report.Funds, FundAudit{
				Fund:    f,
				Stored:  stored[f],
				Derived: derived[f],
				Drift:   stored[f] - derived[f],
			})
			report.StoredTotal += stored[f]
		}
		report.Discrepancy = report.StoredTotal - (report.Contributions + report.Income - report.Expenses)
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("audit: %w", err)
	}
	return report, nil
}
