package memory

import (
	"context"
	"sort"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

func (s *Store) CreatePerson(ctx context.Context, p core.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[p.ID]; ok {
		return ledger.ErrDuplicateID
	}
	s.people[p.ID] = p.Name
	return nil
}

func (s *Store) UpdatePerson(ctx context.Context, p core.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[p.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.people[p.ID] = p.Name
	return nil
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.people, id)
	return nil
}

func (s *Store) ListPeople(ctx context.Context) ([]core.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Person, 0, len(s.people))
	for id, name := range s.people {
		out = append(out, core.Person{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return ledger.ErrDuplicateID
	}
	s.categories[c.ID] = c.Name
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.categories[c.ID] = c.Name
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for id, name := range s.categories {
		out = append(out, core.Category{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TopCategories totals posting EXPENSE amounts per category, largest first.
func (s *Store) TopCategories(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, t := range s.txns {
		if t.Type == core.Expense && t.Posting == posting && t.CategoryID != "" {
			totals[t.CategoryID] += t.Amount.Paise
		}
	}
	return s.topEntries(totals, s.categories, limit), nil
}

// TopPeople totals posting CONTRIBUTION amounts per person, largest first.
func (s *Store) TopPeople(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, t := range s.txns {
		if t.Type == core.Contribution && t.Posting == posting && t.PersonID != "" {
			totals[t.PersonID] += t.Amount.Paise
		}
	}
	return s.topEntries(totals, s.people, limit), nil
}

func (s *Store) topEntries(totals map[string]int64, names map[string]string, limit int) []ledger.TopEntry {
	out := make([]ledger.TopEntry, 0, len(totals))
	for id, total := range totals {
		name, ok := names[id]
		if !ok {
			continue // aggregation joins against reference data
		}
		out = append(out, ledger.TopEntry{ID: id, Name: name, TotalPaise: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPaise != out[j].TotalPaise {
			return out[i].TotalPaise > out[j].TotalPaise
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
