package core

import (
	"errors"
	"testing"
)

func validTransfer() Transaction {
	return Transaction{
		ID:       "t_1",
		Type:     Transfer,
		Amount:   Money{Paise: 5000},
		Date:     NewDate(2025, 4, 1),
		Posting:  true,
		FundFrom: FundCash,
		FundTo:   FundOnlineA,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{
			name:   "valid transfer",
			mutate: func(*Transaction) {},
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount.Paise = 0 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount.Paise = -100 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "REFUND" },
			wantErr: ErrInvalidTxnType,
		},
		{
			name:    "transfer between the same fund",
			mutate:  func(tx *Transaction) { tx.FundTo = FundCash },
			wantErr: ErrSameFund,
		},
		{
			name: "transfer missing destination",
			mutate: func(tx *Transaction) {
				tx.FundTo = ""
			},
		},
		{
			name: "non-posting transfer skips fund rules",
			mutate: func(tx *Transaction) {
				tx.Posting = false
				tx.FundFrom = ""
				tx.FundTo = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransfer()
			tt.mutate(&tx)

			err := tx.Validate()
			switch tt.name {
			case "transfer missing destination":
				var missing *MissingFieldError
				if !errors.As(err, &missing) {
					t.Fatalf("expected MissingFieldError, got %v", err)
				}
				if missing.Field != "fund_to" {
					t.Errorf("expected missing fund_to, got %s", missing.Field)
				}
				return
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidatePerTypeRequirements(t *testing.T) {
	base := Transaction{
		Amount:  Money{Paise: 1000},
		Date:    NewDate(2025, 4, 1),
		Posting: true,
	}

	tests := []struct {
		name         string
		txnType      TxnType
		fill         func(*Transaction)
		missingField string
	}{
		{
			name:         "contribution needs fund_to",
			txnType:      Contribution,
			fill:         func(tx *Transaction) { tx.PersonID = "p_asha" },
			missingField: "fund_to",
		},
		{
			name:         "contribution needs person_id",
			txnType:      Contribution,
			fill:         func(tx *Transaction) { tx.FundTo = FundCash },
			missingField: "person_id",
		},
		{
			name:         "income needs fund_to",
			txnType:      Income,
			fill:         func(*Transaction) {},
			missingField: "fund_to",
		},
		{
			name:         "expense needs fund_from",
			txnType:      Expense,
			fill:         func(tx *Transaction) { tx.CategoryID = "cat_food" },
			missingField: "fund_from",
		},
		{
			name:         "expense needs category_id",
			txnType:      Expense,
			fill:         func(tx *Transaction) { tx.FundFrom = FundCash },
			missingField: "category_id",
		},
		{
			name:         "transfer needs fund_from",
			txnType:      Transfer,
			fill:         func(tx *Transaction) { tx.FundTo = FundCash },
			missingField: "fund_from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base
			tx.Type = tt.txnType
			tt.fill(&tx)

			err := tx.Validate()
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tt.missingField {
				t.Errorf("expected missing %s, got %s", tt.missingField, missing.Field)
			}
			if !IsValidationError(err) {
				t.Error("MissingFieldError should classify as a validation error")
			}

			// The same record without posting is informational and passes.
			tx.Posting = false
			if err := tx.Validate(); err != nil {
				t.Errorf("non-posting record should validate, got %v", err)
			}
		})
	}
}

func TestEffect(t *testing.T) {
	tests := []struct {
		name string
		txn  Transaction
		want map[Fund]int64
	}{
		{
			name: "contribution credits fund_to",
			txn: Transaction{
				Type: Contribution, Amount: Money{Paise: 2500}, Posting: true,
				FundTo: FundCash, PersonID: "p_asha",
			},
			want: map[Fund]int64{FundCash: 2500, FundOnlineA: 0, FundOnlineY: 0},
		},
		{
			name: "income credits fund_to",
			txn: Transaction{
				Type: Income, Amount: Money{Paise: 10000}, Posting: true,
				FundTo: FundOnlineA,
			},
			want: map[Fund]int64{FundCash: 0, FundOnlineA: 10000, FundOnlineY: 0},
		},
		{
			name: "expense debits fund_from",
			txn: Transaction{
				Type: Expense, Amount: Money{Paise: 700}, Posting: true,
				FundFrom: FundOnlineY, CategoryID: "cat_rent",
			},
			want: map[Fund]int64{FundCash: 0, FundOnlineA: 0, FundOnlineY: -700},
		},
		{
			name: "transfer moves between funds",
			txn: Transaction{
				Type: Transfer, Amount: Money{Paise: 5000}, Posting: true,
				FundFrom: FundCash, FundTo: FundOnlineA,
			},
			want: map[Fund]int64{FundCash: -5000, FundOnlineA: 5000, FundOnlineY: 0},
		},
		{
			name: "non-posting record is balance neutral",
			txn: Transaction{
				Type: Income, Amount: Money{Paise: 9999}, Posting: false,
				FundTo: FundCash,
			},
			want: map[Fund]int64{FundCash: 0, FundOnlineA: 0, FundOnlineY: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for fund, want := range tt.want {
				if got := tt.txn.Effect(fund); got != want {
					t.Errorf("Effect(%s) = %d, want %d", fund, got, want)
				}
			}
		})
	}
}

func TestDeltasOmitsZeroEffects(t *testing.T) {
	txn := Transaction{
		Type: Income, Amount: Money{Paise: 100}, Posting: true,
		FundTo: FundCash,
	}
	deltas := txn.Deltas()
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(deltas))
	}
	if deltas[FundCash] != 100 {
		t.Errorf("expected CASH delta 100, got %d", deltas[FundCash])
	}

	txn.Posting = false
	if len(txn.Deltas()) != 0 {
		t.Error("non-posting record should yield no deltas")
	}
}

func TestParseFund(t *testing.T) {
	for _, s := range []string{"CASH", "ONLINE_A", "ONLINE_Y"} {
		if _, err := ParseFund(s); err != nil {
			t.Errorf("ParseFund(%q) returned %v", s, err)
		}
	}
	for _, s := range []string{"", "cash", "BANK"} {
		if _, err := ParseFund(s); !errors.Is(err, ErrInvalidFund) {
			t.Errorf("ParseFund(%q) should fail with ErrInvalidFund, got %v", s, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-01")
	if err != nil {
		t.Fatalf("ParseDate returned %v", err)
	}
	if d.String() != "2025-04-01" {
		t.Errorf("round trip mismatch: %s", d.String())
	}

	if _, err := ParseDate("01/04/2025"); err == nil {
		t.Error("expected error for non ISO date")
	}
}
