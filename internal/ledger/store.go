package ledger

import (
	"context"
	"errors"

	"hisab/internal/core"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrDuplicateID = errors.New("transaction id already exists")
)

// PageSize is the fixed page size for transaction listings.
const PageSize = 100

// Filter narrows a transaction listing. Zero values mean "no constraint".
type Filter struct {
	Type       core.TxnType
	Fund       core.Fund // matches fund_from or fund_to
	CategoryID string
	PersonID   string
	From       core.Date
	To         core.Date
	Posting    *bool
	Query      string // substring match over notes and party
	Page       int    // 1-based
}

// Tx is the set of operations available inside one atomic store
// transaction. A failure anywhere rolls back every mutation made through
// the same Tx.
type Tx interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	InsertTransaction(ctx context.Context, t core.Transaction) error
	ReplaceTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// ApplyDeltas adds each delta to the matching fund's stored balance.
	ApplyDeltas(ctx context.Context, deltas map[core.Fund]int64) error

	AllTransactions(ctx context.Context) ([]core.Transaction, error)
	FundBalances(ctx context.Context) (map[core.Fund]int64, error)
}

// Store is the durable record and balance store the engine drives. InTx
// runs fn inside a single transaction: fn returning an error discards all
// of its effects, nil commits them as one unit.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f Filter) ([]core.Transaction, error)
	AllTransactions(ctx context.Context) ([]core.Transaction, error)
	FundBalances(ctx context.Context) (map[core.Fund]int64, error)
}
