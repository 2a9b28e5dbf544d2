package lending

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"libraryadmin/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// TransactionRoutes mounts the ledger endpoints on r.
func (h *HTTPHandler) TransactionRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Issue)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/return", h.Return)
}

// FineRoutes mounts the fine endpoints on r.
func (h *HTTPHandler) FineRoutes(r chi.Router) {
	r.Get("/overdue", h.Overdue)
	r.Get("/summary", h.Summary)
	r.Get("/report.pdf", h.Report)
	r.Post("/{id}/apply", h.ApplyFine)
}

// List handles GET /v1/transactions?status=
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	status, err := ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	views, err := h.service.ListJoined(r.Context(), status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, views, map[string]any{"total": len(views), "status": string(status)})
}

// Stats handles GET /v1/transactions/stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, st, nil)
}

// Get handles GET /v1/transactions/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, tx, nil)
}

// Issue handles POST /v1/transactions
func (h *HTTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var in IssueInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.service.Issue(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, tx)
}

// Return handles POST /v1/transactions/{id}/return
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Return(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, tx, nil)
}

// Overdue handles GET /v1/fines/overdue
func (h *HTTPHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Overdue(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sum := h.service.Summarize(items)
	httpx.JSONSuccess(w, r, items, map[string]any{
		"total":                     len(items),
		"fine_rate_paise":           sum.FineRate,
		"total_pending_fines_paise": sum.TotalPendingFines,
	})
}

// Summary handles GET /v1/fines/summary
func (h *HTTPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, sum, nil)
}

// ApplyFine handles POST /v1/fines/{id}/apply
func (h *HTTPHandler) ApplyFine(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.ApplyFine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, tx, nil)
}

// Report handles GET /v1/fines/report.pdf
func (h *HTTPHandler) Report(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Overdue(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	now := h.service.now()
	var buf bytes.Buffer
	if err := WriteOverdueReport(&buf, items, h.service.Summarize(items), now); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	filename := "overdue-report-" + now.Format(DateLayout) + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
