package core

import (
	"errors"
	"fmt"
	"time"
)

// Fund identifies one of the fixed money pools tracked by the ledger.
// The set is closed; adding a fund is a schema change.
const (
	FundCash    Fund = "CASH"
	FundOnlineA Fund = "ONLINE_A"
	FundOnlineY Fund = "ONLINE_Y"
)

const (
	Contribution TxnType = "CONTRIBUTION"
	Income       TxnType = "INCOME"
	Expense      TxnType = "EXPENSE"
	Transfer     TxnType = "TRANSFER"
)

type (
	Fund    string
	TxnType string

	// Money is an amount in paise, the smallest currency unit.
	Money struct {
		Paise int64
	}

	// Date is a calendar date with no time-of-day semantics.
	Date struct {
		time.Time
	}

	// Transaction is the unit of record of the ledger. Only records with
	// Posting set affect fund balances; the rest are informational.
	Transaction struct {
		ID      string
		Type    TxnType
		Amount  Money
		Date    Date
		Posting bool

		FundFrom Fund // empty when unused
		FundTo   Fund // empty when unused

		PersonID   string
		CategoryID string
		Party      string
		Notes      string
	}
)

var (
	ErrInvalidAmount  = errors.New("amount must be a positive number of paise")
	ErrInvalidDate    = errors.New("date cannot be zero")
	ErrInvalidFund    = errors.New("unknown fund")
	ErrInvalidTxnType = errors.New("unknown transaction type")
	ErrSameFund       = errors.New("transfer requires two distinct funds")
)

// MissingFieldError reports a field the transaction's type requires.
type MissingFieldError struct {
	Field string
	Type  TxnType
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s required for %s when posting", e.Field, e.Type)
}

// Funds returns every fund in a stable order.
func Funds() []Fund {
	return []Fund{FundCash, FundOnlineA, FundOnlineY}
}

// ParseFund validates a fund identifier at the boundary.
func ParseFund(s string) (Fund, error) {
	switch Fund(s) {
	case FundCash, FundOnlineA, FundOnlineY:
		return Fund(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFund, s)
}

// ParseTxnType validates a transaction type at the boundary.
func ParseTxnType(s string) (TxnType, error) {
	switch TxnType(s) {
	case Contribution, Income, Expense, Transfer:
		return TxnType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTxnType, s)
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Validate checks the record's internal coherence for its type. Semantic
// rules apply only to posting records; informational records need nothing
// beyond a positive amount and a real date.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if _, err := ParseTxnType(string(t.Type)); err != nil {
		return err
	}
	if !t.Posting {
		return nil
	}

	switch t.Type {
	case Contribution:
		if t.FundTo == "" {
			return &MissingFieldError{Field: "fund_to", Type: t.Type}
		}
		if t.PersonID == "" {
			return &MissingFieldError{Field: "person_id", Type: t.Type}
		}
	case Income:
		if t.FundTo == "" {
			return &MissingFieldError{Field: "fund_to", Type: t.Type}
		}
	case Expense:
		if t.FundFrom == "" {
			return &MissingFieldError{Field: "fund_from", Type: t.Type}
		}
		if t.CategoryID == "" {
			return &MissingFieldError{Field: "category_id", Type: t.Type}
		}
	case Transfer:
		if t.FundFrom == "" {
			return &MissingFieldError{Field: "fund_from", Type: t.Type}
		}
		if t.FundTo == "" {
			return &MissingFieldError{Field: "fund_to", Type: t.Type}
		}
		if t.FundFrom == t.FundTo {
			return ErrSameFund
		}
	}
	return nil
}

// Effect returns the signed balance delta this transaction contributes to
// fund. Non-posting records contribute zero everywhere.
func (t Transaction) Effect(fund Fund) int64 {
	if !t.Posting {
		return 0
	}
	switch t.Type {
	case Contribution, Income:
		if fund == t.FundTo {
			return t.Amount.Paise
		}
	case Expense:
		if fund == t.FundFrom {
			return -t.Amount.Paise
		}
	case Transfer:
		switch fund {
		case t.FundFrom:
			return -t.Amount.Paise
		case t.FundTo:
			return t.Amount.Paise
		}
	}
	return 0
}

// Deltas collects the non-zero per-fund effects of this transaction.
func (t Transaction) Deltas() map[Fund]int64 {
	deltas := make(map[Fund]int64, 2)
	for _, f := range Funds() {
		if v := t.Effect(f); v != 0 {
			deltas[f] = v
		}
	}
	return deltas
}

// IsValidationError reports whether err is one of the input or semantic
// validation failures, as opposed to an identity or storage error.
func IsValidationError(err error) bool {
	var missing *MissingFieldError
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidFund) ||
		errors.Is(err, ErrInvalidTxnType) ||
		errors.Is(err, ErrSameFund) ||
		errors.As(err, &missing)
}
