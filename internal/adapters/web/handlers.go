package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"franchise-backoffice/internal/app"
	"franchise-backoffice/internal/core"
	"franchise-backoffice/internal/store"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)
	r.Get("/api/schema/invoice", h.invoiceSchema)

	// Validation engine
	r.Post("/api/invoices/validate", h.validateInvoice)
	r.Post("/api/journal-entries/validate", h.validateJournalEntry)
	r.Post("/api/documents/reconcile-totals", h.reconcileTotals)

	// Bank reconciliation
	r.Post("/api/bank-transactions/{id}/suggestions", h.suggestMatches)
	r.Post("/api/bank-transactions/{id}/apply-rules", h.applyRules)
	r.Post("/api/bank-transactions/{id}/reconcile", h.reconcileTransaction)
	r.Post("/api/reconciliations/{id}/confirm", h.confirmReconciliation)
	r.Post("/api/reconciliations/{id}/reject", h.rejectReconciliation)
	r.Get("/api/reconciliations/{id}", h.getReconciliation)
	r.Get("/api/bank-accounts/{id}/pending", h.listPending)
	r.Get("/api/rules", h.listRules)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

func (h *Handler) validateInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.ValidateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ValidateInvoice(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATION_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) validateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var entry core.JournalEntry
	if !decodeJSON(w, r, &entry) {
		return
	}

	type response struct {
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
		Code  string `json:"code,omitempty"`
	}

	if err := h.svc.ValidateJournalEntry(r.Context(), entry); err != nil {
		var entryErr *core.EntryError
		resp := response{Valid: false, Error: err.Error()}
		if errors.As(err, &entryErr) {
			resp.Code = entryErr.Code
		}
		writeJSON(w, resp)
		return
	}
	writeJSON(w, response{Valid: true})
}

func (h *Handler) reconcileTotals(w http.ResponseWriter, r *http.Request) {
	var req app.ReconcileTotalsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ReconcileDocumentTotals(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "RECONCILE_TOTALS_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) suggestMatches(w http.ResponseWriter, r *http.Request) {
	var req app.SuggestMatchesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.BankTransactionID = chi.URLParam(r, "id")

	result, err := h.svc.SuggestMatches(r.Context(), req)
	if err != nil {
		writeStoreError(w, r, err, "SUGGEST_FAILED")
		return
	}
	writeJSON(w, result)
}

func (h *Handler) applyRules(w http.ResponseWriter, r *http.Request) {
	rule, err := h.svc.ApplyRules(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "APPLY_RULES_FAILED")
		return
	}

	type response struct {
		Matched bool                     `json:"matched"`
		Rule    *core.ReconciliationRule `json:"rule,omitempty"`
	}
	writeJSON(w, response{Matched: rule != nil, Rule: rule})
}

func (h *Handler) reconcileTransaction(w http.ResponseWriter, r *http.Request) {
	var req app.ReconcileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.BankTransactionID = chi.URLParam(r, "id")

	result, err := h.svc.ReconcileTransaction(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "RECONCILE_REJECTED", http.StatusConflict)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) confirmReconciliation(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ConfirmReconciliation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "CONFIRM_REJECTED", http.StatusConflict)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) rejectReconciliation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.RejectReconciliation(r.Context(), chi.URLParam(r, "id"), body.Notes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "REJECT_REJECTED", http.StatusConflict)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getReconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetReconciliation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, "GET_FAILED")
		return
	}
	writeJSON(w, rec)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPendingTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err.Error(), "LIST_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListActiveRules(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "LIST_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// writeStoreError maps store.ErrNotFound to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, code string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, err.Error(), code, http.StatusInternalServerError)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
