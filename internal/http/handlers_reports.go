package http

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"hisab/internal/ledger"
)

type summaryResponse struct {
	TotalContributions int64 `json:"total_contributions"`
	TotalIncome        int64 `json:"total_income"`
	TotalExpenses      int64 `json:"total_expenses"`
	StoredTotalFunds   int64 `json:"stored_total_funds"`
	Discrepancy        int64 `json:"discrepancy"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.auditor.Audit(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalContributions: report.Contributions,
		TotalIncome:        report.Income,
		TotalExpenses:      report.Expenses,
		StoredTotalFunds:   report.StoredTotal,
		Discrepancy:        report.Discrepancy,
	})
}

type topEntryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalPaise int64  `json:"total_paise"`
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.TopCategories(r.Context(), parseLimitParam(r, 8), parsePostingParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topEntries(entries))
}

func (s *Server) handleTopPeople(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.TopPeople(r.Context(), parseLimitParam(r, 8), parsePostingParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topEntries(entries))
}

func topEntries(entries []ledger.TopEntry) []topEntryResponse {
	out := make([]topEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, topEntryResponse{ID: e.ID, Name: e.Name, TotalPaise: e.TotalPaise})
	}
	return out
}

type fundAuditResponse struct {
	Fund         string `json:"fund"`
	StoredPaise  int64  `json:"stored_paise"`
	DerivedPaise int64  `json:"derived_paise"`
	DriftPaise   int64  `json:"drift_paise"`
}

type auditResponse struct {
	Funds       []fundAuditResponse `json:"funds"`
	Discrepancy int64               `json:"discrepancy"`
	Clean       bool                `json:"clean"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.auditor.Audit(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := auditResponse{Discrepancy: report.Discrepancy, Clean: report.Clean()}
	for _, f := range report.Funds {
		resp.Funds = append(resp.Funds, fundAuditResponse{
			Fund:         string(f.Fund),
			StoredPaise:  f.Stored,
			DerivedPaise: f.Derived,
			DriftPaise:   f.Drift,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "transactions"
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)
	defer writer.Flush()

	switch scope {
	case "transactions":
		s.exportTransactions(w, r, writer)
	case "people":
		people, err := s.refs.ListPeople(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		_ = writer.Write([]string{"id", "name"})
		for _, p := range people {
			_ = writer.Write([]string{p.ID, p.Name})
		}
	case "categories":
		categories, err := s.refs.ListCategories(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		_ = writer.Write([]string{"id", "name"})
		for _, c := range categories {
			_ = writer.Write([]string{c.ID, c.Name})
		}
	default:
		http.Error(w, "unknown scope", http.StatusBadRequest)
	}
}

func (s *Server) exportTransactions(w http.ResponseWriter, r *http.Request, writer *csv.Writer) {
	posting := parsePostingParam(r)
	txns, err := s.reports.AllTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = writer.Write([]string{"id", "txn_type", "amount_paise", "date", "posting",
		"fund_from", "fund_to", "person_id", "category_id", "party", "notes"})

	// History dumps run oldest first.
	for i := len(txns) - 1; i >= 0; i-- {
		t := txns[i]
		if t.Posting != posting {
			continue
		}
		postingCol := "0"
		if t.Posting {
			postingCol = "1"
		}
		_ = writer.Write([]string{
			t.ID,
			string(t.Type),
			strconv.FormatInt(t.Amount.Paise, 10),
			t.Date.String(),
			postingCol,
			string(t.FundFrom),
			string(t.FundTo),
			t.PersonID,
			t.CategoryID,
			t.Party,
			t.Notes,
		})
	}
}
