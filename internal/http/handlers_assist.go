package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"spendwise/internal/assist"
	"spendwise/internal/category"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
)

type receiptRequest struct {
	ReceiptImage string `json:"receiptImage"`
}

type suggestRequest struct {
	Description string `json:"description"`
}

type suggestResponse struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// handleAssistReceipt runs receipt analysis and returns the extracted
// fields. The result only pre-fills a client form; nothing is committed
// here.
func (s *Server) handleAssistReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if !s.assist.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "assist is not configured")
		return
	}

	var req receiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ReceiptImage) == "" {
		writeFieldErrors(w, core.FieldErrors{"receiptImage": "receipt image is required"})
		return
	}

	atomic.AddInt64(&s.metrics.assistCalls, 1)
	fields, err := s.assist.AnalyzeReceipt(r.Context(), req.ReceiptImage)
	if err != nil {
		if strings.Contains(err.Error(), "data URI") {
			writeFieldErrors(w, core.FieldErrors{"receiptImage": err.Error()})
			return
		}
		slog.ErrorContext(r.Context(), "Receipt analysis failed",
			applog.FieldComponent, applog.ComponentAssist,
			applog.FieldOperation, applog.OpAnalyze,
			applog.FieldError, err)
		writeError(w, http.StatusBadGateway, "failed to analyze the receipt")
		return
	}

	writeJSON(w, http.StatusOK, fields)
}

// handleAssistCategory asks for a category suggestion and maps the label
// back to a registry value. An unmatched label is still a 200: value stays
// empty and the client reports "no suggestion applied".
func (s *Server) handleAssistCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if !s.assist.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "assist is not configured")
		return
	}

	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	atomic.AddInt64(&s.metrics.assistCalls, 1)
	label, err := s.assist.SuggestCategory(r.Context(), req.Description)
	if err != nil {
		if errors.Is(err, assist.ErrDescriptionTooShort) {
			writeFieldErrors(w, core.FieldErrors{"description": err.Error()})
			return
		}
		slog.ErrorContext(r.Context(), "Category suggestion failed",
			applog.FieldComponent, applog.ComponentAssist,
			applog.FieldOperation, applog.OpSuggest,
			applog.FieldError, err)
		writeError(w, http.StatusBadGateway, "failed to get a suggestion")
		return
	}

	resp := suggestResponse{Category: label}
	if cat, ok := category.MatchLabel(label); ok {
		resp.Value = cat.Value
	} else {
		slog.WarnContext(r.Context(), "Suggested label matches no category",
			applog.FieldComponent, applog.ComponentAssist,
			"label", label)
	}

	writeJSON(w, http.StatusOK, resp)
}
