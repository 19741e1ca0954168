// Package memory holds an in-process Store used by tests and the
// DATA_BACKEND=memory mode. State lives behind one mutex; InTx snapshots
// and restores it to give the same all-or-nothing semantics the SQLite
// store gets from real transactions.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

type Store struct {
	mu         sync.RWMutex
	txns       map[string]core.Transaction
	balances   map[core.Fund]int64
	people     map[string]string
	categories map[string]string
}

func NewStore() *Store {
	s := &Store{
		txns:       make(map[string]core.Transaction),
		balances:   make(map[core.Fund]int64),
		people:     make(map[string]string),
		categories: make(map[string]string),
	}
	for _, f := range core.Funds() {
		s.balances[f] = 0
	}
	return s
}

// InTx runs fn under the write lock. On error the pre-transaction
// snapshot is restored, so partial mutations never become visible.
func (s *Store) InTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txnsBackup := make(map[string]core.Transaction, len(s.txns))
	for k, v := range s.txns {
		txnsBackup[k] = v
	}
	balancesBackup := make(map[core.Fund]int64, len(s.balances))
	for k, v := range s.balances {
		balancesBackup[k] = v
	}

	if err := fn(&memTx{store: s}); err != nil {
		s.txns = txnsBackup
		s.balances = balancesBackup
		return err
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (core.Transaction, error) {
	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, nil
}

func (s *Store) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLocked(), nil
}

func (s *Store) allLocked() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out
}

func (s *Store) ListTransactions(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, t := range s.txns {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)

	page := f.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * ledger.PageSize
	if start >= len(out) {
		return nil, nil
	}
	end := start + ledger.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *Store) FundBalances(ctx context.Context) (map[core.Fund]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balancesLocked(), nil
}

func (s *Store) balancesLocked() map[core.Fund]int64 {
	out := make(map[core.Fund]int64, len(s.balances))
	for f, v := range s.balances {
		out[f] = v
	}
	return out
}

// SetBalance overwrites one fund's stored balance, bypassing the posting
// engine. Test hook for exercising drift detection.
func (s *Store) SetBalance(fund core.Fund, paise int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[fund] = paise
}

func matches(t core.Transaction, f ledger.Filter) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Fund != "" && t.FundFrom != f.Fund && t.FundTo != f.Fund {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.PersonID != "" && t.PersonID != f.PersonID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To.Time) {
		return false
	}
	if f.Posting != nil && t.Posting != *f.Posting {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Notes), q) &&
			!strings.Contains(strings.ToLower(t.Party), q) {
			return false
		}
	}
	return true
}

func sortNewestFirst(txns []core.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date.Time) {
			return txns[i].Date.After(txns[j].Date.Time)
		}
		return txns[i].ID > txns[j].ID
	})
}

// memTx mutates the store directly; the InTx snapshot covers rollback.
type memTx struct {
	store *Store
}

func (tx *memTx) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return tx.store.getLocked(id)
}

func (tx *memTx) InsertTransaction(ctx context.Context, t core.Transaction) error {
	if _, ok := tx.store.txns[t.ID]; ok {
		return ledger.ErrDuplicateID
	}
	tx.store.txns[t.ID] = t
	return nil
}

func (tx *memTx) ReplaceTransaction(ctx context.Context, t core.Transaction) error {
	if _, ok := tx.store.txns[t.ID]; !ok {
		return ledger.ErrNotFound
	}
	tx.store.txns[t.ID] = t
	return nil
}

func (tx *memTx) DeleteTransaction(ctx context.Context, id string) error {
	if _, ok := tx.store.txns[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(tx.store.txns, id)
	return nil
}

func (tx *memTx) ApplyDeltas(ctx context.Context, deltas map[core.Fund]int64) error {
	for f, v := range deltas {
		tx.store.balances[f] += v
	}
	return nil
}

func (tx *memTx) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return tx.store.allLocked(), nil
}

func (tx *memTx) FundBalances(ctx context.Context) (map[core.Fund]int64, error) {
	return tx.store.balancesLocked(), nil
}
