package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

// transactionPayload is the wire shape of a transaction, matching the
// API's JSON field names. Optional fields are pointers so absent and null
// both mean "unset".
type transactionPayload struct {
	ID          string  `json:"id,omitempty"`
	TxnType     string  `json:"txn_type"`
	AmountPaise int64   `json:"amount_paise"`
	Date        string  `json:"date"`
	Posting     *bool   `json:"posting"`
	FundFrom    *string `json:"fund_from"`
	FundTo      *string `json:"fund_to"`
	PersonID    *string `json:"person_id"`
	CategoryID  *string `json:"category_id"`
	Party       *string `json:"party"`
	Notes       *string `json:"notes"`
}

func decodeTransaction(r *http.Request) (core.Transaction, error) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return core.Transaction{}, fmt.Errorf("decode body: %w", err)
	}
	return payload.toTransaction()
}

func (p transactionPayload) toTransaction() (core.Transaction, error) {
	txnType, err := core.ParseTxnType(p.TxnType)
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, p.Date)
	}

	t := core.Transaction{
		ID:      p.ID,
		Type:    txnType,
		Amount:  core.Money{Paise: p.AmountPaise},
		Date:    date,
		Posting: true,
	}
	if p.Posting != nil {
		t.Posting = *p.Posting
	}

	if p.FundFrom != nil && *p.FundFrom != "" {
		if t.FundFrom, err = core.ParseFund(*p.FundFrom); err != nil {
			return core.Transaction{}, err
		}
	}
	if p.FundTo != nil && *p.FundTo != "" {
		if t.FundTo, err = core.ParseFund(*p.FundTo); err != nil {
			return core.Transaction{}, err
		}
	}
	if p.PersonID != nil {
		t.PersonID = strings.TrimSpace(*p.PersonID)
	}
	if p.CategoryID != nil {
		t.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.Party != nil {
		t.Party = sanitizeInput(*p.Party)
	}
	if p.Notes != nil {
		t.Notes = sanitizeInput(*p.Notes)
	}
	return t, nil
}

func transactionToPayload(t core.Transaction) transactionPayload {
	posting := t.Posting
	return transactionPayload{
		ID:          t.ID,
		TxnType:     string(t.Type),
		AmountPaise: t.Amount.Paise,
		Date:        t.Date.String(),
		Posting:     &posting,
		FundFrom:    optional(string(t.FundFrom)),
		FundTo:      optional(string(t.FundTo)),
		PersonID:    optional(t.PersonID),
		CategoryID:  optional(t.CategoryID),
		Party:       optional(t.Party),
		Notes:       optional(t.Notes),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseFilter builds a listing filter from query parameters. Bad enum
// values are rejected rather than ignored.
func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	var f ledger.Filter
	var err error

	if v := q.Get("type"); v != "" {
		if f.Type, err = core.ParseTxnType(v); err != nil {
			return ledger.Filter{}, err
		}
	}
	if v := q.Get("fund"); v != "" {
		if f.Fund, err = core.ParseFund(v); err != nil {
			return ledger.Filter{}, err
		}
	}
	f.CategoryID = q.Get("category_id")
	f.PersonID = q.Get("person_id")

	if v := q.Get("from"); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return ledger.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return ledger.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
	}
	if v := q.Get("posting"); v != "" {
		posting, err := strconv.ParseBool(v)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid posting flag %q", v)
		}
		f.Posting = &posting
	}
	f.Query = strings.TrimSpace(q.Get("q"))

	f.Page = 1
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			f.Page = page
		}
	}
	return f, nil
}

// parsePostingParam reads the posting query flag used by report
// endpoints, defaulting to true.
func parsePostingParam(r *http.Request) bool {
	if v := r.URL.Query().Get("posting"); v != "" {
		if posting, err := strconv.ParseBool(v); err == nil {
			return posting
		}
	}
	return true
}

func parseLimitParam(r *http.Request, defaultLimit int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultLimit
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// slugID derives a reference id from a display name, e.g.
// slugID("p", "Asha Rao") -> "p_asha_rao".
func slugID(prefix, name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return prefix + "_" + strings.Trim(b.String(), "_")
}
