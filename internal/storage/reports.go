package storage

import (
	"context"
	"fmt"

	"hisab/internal/ledger"
)

// TopCategories totals EXPENSE amounts per category, largest first.
func (r *Repository) TopCategories(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error) {
	return r.topEntries(ctx, `
		SELECT t.category_id, c.name, SUM(t.amount_paise) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.posting = ? AND t.txn_type = 'EXPENSE'
		GROUP BY t.category_id, c.name
		ORDER BY total DESC, t.category_id
		LIMIT ?`, posting, limit)
}

// TopPeople totals CONTRIBUTION amounts per person, largest first.
func (r *Repository) TopPeople(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error) {
	return r.topEntries(ctx, `
		SELECT t.person_id, p.name, SUM(t.amount_paise) AS total
		FROM transactions t
		JOIN people p ON p.id = t.person_id
		WHERE t.posting = ? AND t.txn_type = 'CONTRIBUTION'
		GROUP BY t.person_id, p.name
		ORDER BY total DESC, t.person_id
		LIMIT ?`, posting, limit)
}

func (r *Repository) topEntries(ctx context.Context, query string, posting bool, limit int) ([]ledger.TopEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, posting, limit)
	if err != nil {
		return nil, fmt.Errorf("top entries: %w", err)
	}
	defer rows.Close()

	var out []ledger.TopEntry
	for rows.Next() {
		var e ledger.TopEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.TotalPaise); err != nil {
			return nil, fmt.Errorf("scan top entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
