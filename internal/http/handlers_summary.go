package http

import (
	"net/http"

	"spendwise/internal/category"
	"spendwise/internal/core"
)

// summaryResponse decorates per-category totals with display labels so
// clients need no registry of their own. Unknown values fall back to "N/A".
type summaryResponse struct {
	Total      core.Money            `json:"total"`
	Count      int                   `json:"count"`
	ByCategory []categoryTotalLabled `json:"byCategory"`
}

type categoryTotalLabled struct {
	Category string     `json:"category"`
	Label    string     `json:"label"`
	Total    core.Money `json:"total"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	summary := core.Summarize(s.repo.List(), category.Values())

	resp := summaryResponse{
		Total:      summary.Total,
		Count:      summary.Count,
		ByCategory: make([]categoryTotalLabled, 0, len(summary.ByCategory)),
	}
	for _, ct := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryTotalLabled{
			Category: ct.Category,
			Label:    category.LabelOr(ct.Category, "N/A"),
			Total:    ct.Total,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, category.All())
}
