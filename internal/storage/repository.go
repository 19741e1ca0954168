package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hisab/internal/core"
	"hisab/internal/ledger"

	_ "modernc.org/sqlite"
)

// Repository is the durable SQLite store. Records and fund balances live
// in the same database file, so every engine operation commits both in
// one SQLite transaction.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InTx runs fn inside one SQLite transaction. fn returning an error rolls
// everything back; SQLite's serialized writes give the per-id ordering the
// engine relies on.
func (r *Repository) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const txnColumns = `id, txn_type, amount_paise, txn_date, posting, fund_from, fund_to, person_id, category_id, party, notes`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return getTransaction(ctx, r.db, id)
}

func (r *Repository) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return allTransactions(ctx, r.db)
}

func (r *Repository) FundBalances(ctx context.Context) (map[core.Fund]int64, error) {
	return fundBalances(ctx, r.db)
}

// ListTransactions returns one page of records matching f, newest first.
func (r *Repository) ListTransactions(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "txn_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Fund != "" {
		conds = append(conds, "(fund_from = ? OR fund_to = ?)")
		args = append(args, string(f.Fund), string(f.Fund))
	}
	if f.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.PersonID != "" {
		conds = append(conds, "person_id = ?")
		args = append(args, f.PersonID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "txn_date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "txn_date <= ?")
		args = append(args, f.To.String())
	}
	if f.Posting != nil {
		conds = append(conds, "posting = ?")
		args = append(args, *f.Posting)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		conds = append(conds, "(notes LIKE ? OR party LIKE ?)")
		args = append(args, like, like)
	}

	query := "SELECT " + txnColumns + " FROM transactions"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	query += " ORDER BY txn_date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, ledger.PageSize, (page-1)*ledger.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// sqlTx adapts *sql.Tx to the ledger.Tx port.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return getTransaction(ctx, t.tx, id)
}

func (t *sqlTx) InsertTransaction(ctx context.Context, txn core.Transaction) error {
	var exists int
	err := t.tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM transactions WHERE id = ?", txn.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check transaction id: %w", err)
	}
	if exists > 0 {
		return ledger.ErrDuplicateID
	}

	_, err = t.tx.ExecContext(ctx,
		"INSERT INTO transactions ("+txnColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		txn.ID, string(txn.Type), txn.Amount.Paise, txn.Date.String(), txn.Posting,
		nullable(string(txn.FundFrom)), nullable(string(txn.FundTo)),
		nullable(txn.PersonID), nullable(txn.CategoryID),
		nullable(txn.Party), nullable(txn.Notes))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (t *sqlTx) ReplaceTransaction(ctx context.Context, txn core.Transaction) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE transactions SET txn_type = ?, amount_paise = ?, txn_date = ?, posting = ?,
		 fund_from = ?, fund_to = ?, person_id = ?, category_id = ?, party = ?, notes = ?
		 WHERE id = ?`,
		string(txn.Type), txn.Amount.Paise, txn.Date.String(), txn.Posting,
		nullable(string(txn.FundFrom)), nullable(string(txn.FundTo)),
		nullable(txn.PersonID), nullable(txn.CategoryID),
		nullable(txn.Party), nullable(txn.Notes),
		txn.ID)
	if err != nil {
		return fmt.Errorf("replace transaction: %w", err)
	}
	return requireRow(res)
}

func (t *sqlTx) DeleteTransaction(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (t *sqlTx) ApplyDeltas(ctx context.Context, deltas map[core.Fund]int64) error {
	// Fixed fund order keeps concurrent transactions from deadlocking on
	// row update order.
	for _, f := range core.Funds() {
		delta, ok := deltas[f]
		if !ok || delta == 0 {
			continue
		}
		res, err := t.tx.ExecContext(ctx,
			"UPDATE fund_balances SET balance_paise = balance_paise + ? WHERE fund = ?",
			delta, string(f))
		if err != nil {
			return fmt.Errorf("apply delta to %s: %w", f, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply delta to %s: %w", f, err)
		}
		if n == 0 {
			return fmt.Errorf("apply delta to %s: fund row missing", f)
		}
	}
	return nil
}

func (t *sqlTx) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return allTransactions(ctx, t.tx)
}

func (t *sqlTx) FundBalances(ctx context.Context) (map[core.Fund]int64, error) {
	return fundBalances(ctx, t.tx)
}

func getTransaction(ctx context.Context, q querier, id string) (core.Transaction, error) {
	row := q.QueryRowContext(ctx, "SELECT "+txnColumns+" FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

func allTransactions(ctx context.Context, q querier) ([]core.Transaction, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+txnColumns+" FROM transactions ORDER BY txn_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func fundBalances(ctx context.Context, q querier) (map[core.Fund]int64, error) {
	rows, err := q.QueryContext(ctx, "SELECT fund, balance_paise FROM fund_balances")
	if err != nil {
		return nil, fmt.Errorf("load fund balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[core.Fund]int64, len(core.Funds()))
	for rows.Next() {
		var fund string
		var paise int64
		if err := rows.Scan(&fund, &paise); err != nil {
			return nil, fmt.Errorf("scan fund balance: %w", err)
		}
		balances[core.Fund(fund)] = paise
	}
	return balances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		txn                  core.Transaction
		txnType, txnDate     string
		fundFrom, fundTo     sql.NullString
		personID, categoryID sql.NullString
		party, notes         sql.NullString
	)
	err := row.Scan(&txn.ID, &txnType, &txn.Amount.Paise, &txnDate, &txn.Posting,
		&fundFrom, &fundTo, &personID, &categoryID, &party, &notes)
	if err != nil {
		return core.Transaction{}, err
	}

	txn.Type = core.TxnType(txnType)
	txn.Date, err = core.ParseDate(txnDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", txnDate, err)
	}
	txn.FundFrom = core.Fund(fundFrom.String)
	txn.FundTo = core.Fund(fundTo.String)
	txn.PersonID = personID.String
	txn.CategoryID = categoryID.String
	txn.Party = party.String
	txn.Notes = notes.String
	return txn, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
