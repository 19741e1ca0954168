package http

import (
	"context"
	"net/http"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

// TransactionService is the posting engine as seen from the HTTP layer.
type TransactionService interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Transaction, error)
	List(ctx context.Context, f ledger.Filter) ([]core.Transaction, error)
	Balances(ctx context.Context) (map[core.Fund]int64, error)
}

// ReferenceStore manages people and categories. Pure key/name CRUD.
type ReferenceStore interface {
	CreatePerson(ctx context.Context, p core.Person) error
	UpdatePerson(ctx context.Context, p core.Person) error
	DeletePerson(ctx context.Context, id string) error
	ListPeople(ctx context.Context) ([]core.Person, error)

	CreateCategory(ctx context.Context, c core.Category) error
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// ReportSource feeds the read-only report handlers.
type ReportSource interface {
	TopCategories(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error)
	TopPeople(ctx context.Context, limit int, posting bool) ([]ledger.TopEntry, error)
	AllTransactions(ctx context.Context) ([]core.Transaction, error)
}

// AuditRunner re-derives balances and reports drift.
type AuditRunner interface {
	Audit(ctx context.Context) (ledger.Report, error)
}

type Server struct {
	http.Server

	svc     TransactionService
	refs    ReferenceStore
	reports ReportSource
	auditor AuditRunner

	rateLimiter *rateLimiter
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc TransactionService, refs ReferenceStore, reports ReportSource, auditor AuditRunner) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		refs:        refs,
		reports:     reports,
		auditor:     auditor,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /api/v1/health", handleHealth)
	mux.HandleFunc("GET /api/v1/funds", s.with(s.handleGetFunds))

	mux.HandleFunc("POST /api/v1/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.with(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.with(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.with(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/v1/people", s.with(s.handleListPeople))
	mux.HandleFunc("POST /api/v1/people", s.with(s.handleCreatePerson))
	mux.HandleFunc("PUT /api/v1/people/{id}", s.with(s.handleUpdatePerson))
	mux.HandleFunc("DELETE /api/v1/people/{id}", s.with(s.handleDeletePerson))

	mux.HandleFunc("GET /api/v1/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/v1/categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/v1/categories/{id}", s.with(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.with(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/v1/reports/summary", s.with(s.handleSummary))
	mux.HandleFunc("GET /api/v1/reports/top-categories", s.with(s.handleTopCategories))
	mux.HandleFunc("GET /api/v1/reports/top-people", s.with(s.handleTopPeople))
	mux.HandleFunc("GET /api/v1/reports/export.csv", s.with(s.handleExportCSV))
	mux.HandleFunc("GET /api/v1/reports/audit", s.with(s.handleAudit))

	return s
}

// Shutdown stops the HTTP server and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
