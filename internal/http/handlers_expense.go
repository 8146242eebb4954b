package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"spendwise/internal/core"
	"spendwise/internal/form"
	applog "spendwise/internal/log"
	"spendwise/internal/repository"
)

// expenseRequest is the payload for create and update. Amount is a JSON
// number; it stays textual until the form validation gate parses it.
type expenseRequest struct {
	Amount   json.Number `json:"amount"`
	Date     string      `json:"date"`
	Category string      `json:"category"`
	Notes    string      `json:"notes"`
}

func (req expenseRequest) draft() form.Draft {
	return form.Draft{
		Amount:   req.Amount.String(),
		Date:     req.Date,
		Category: req.Category,
		Notes:    req.Notes,
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getExpense(w, r, id)
	case http.MethodPut:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.repo.List()
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := s.repo.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Each request drives a fresh form controller through the same
	// open -> populate -> submit path an interactive client takes.
	fc := form.New(s.repo)
	fc.OpenNew()
	fc.SetDraft(req.draft())

	e, err := fc.Submit(r.Context())
	if err != nil {
		var ferr core.FieldErrors
		if errors.As(err, &ferr) {
			writeFieldErrors(w, ferr)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create expense",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	atomic.AddInt64(&s.metrics.expensesCreated, 1)
	slog.InfoContext(r.Context(), "Expense created",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldCategory, e.Category)

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id string) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fc := form.New(s.repo)
	if err := fc.OpenEdit(id); err != nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	fc.SetDraft(req.draft())

	e, err := fc.Submit(r.Context())
	if err != nil {
		var ferr core.FieldErrors
		if errors.As(err, &ferr) {
			writeFieldErrors(w, ferr)
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update expense",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldExpenseID, id,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	atomic.AddInt64(&s.metrics.expensesUpdated, 1)
	slog.InfoContext(r.Context(), "Expense updated",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldCategory, e.Category)

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	// Remove is idempotent; deleting an absent id still answers 204.
	if err := s.repo.Remove(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldExpenseID, id,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	atomic.AddInt64(&s.metrics.expensesDeleted, 1)
	w.WriteHeader(http.StatusNoContent)
}
