package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

func (r *Repository) CreatePerson(ctx context.Context, p core.Person) error {
	return r.createRef(ctx, "people", p.ID, p.Name)
}

func (r *Repository) UpdatePerson(ctx context.Context, p core.Person) error {
	return r.updateRef(ctx, "people", p.ID, p.Name)
}

func (r *Repository) DeletePerson(ctx context.Context, id string) error {
	return r.deleteRef(ctx, "people", id)
}

func (r *Repository) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM people ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var out []core.Person
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) error {
	return r.createRef(ctx, "categories", c.ID, c.Name)
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	return r.updateRef(ctx, "categories", c.ID, c.Name)
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteRef(ctx, "categories", id)
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// createRef / updateRef / deleteRef share the key/name shape of both
// reference tables. table is always a compile-time constant here.

func (r *Repository) createRef(ctx context.Context, table, id, name string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s id: %w", table, err)
	}
	if exists > 0 {
		return ledger.ErrDuplicateID
	}
	if _, err := r.db.ExecContext(ctx, "INSERT INTO "+table+" (id, name) VALUES (?, ?)", id, name); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *Repository) updateRef(ctx context.Context, table, id, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE "+table+" SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return requireRow(res)
}

func (r *Repository) deleteRef(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return requireRow(res)
}
