package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendwise/internal/assist"
	"spendwise/internal/core"
	"spendwise/internal/kv/memory"
	"spendwise/internal/repository"
)

func newTestServer(t *testing.T, assistClient *assist.Client) *Server {
	t.Helper()
	repo := repository.New(context.Background(), memory.New(), "expenses", nil)
	s := NewServer(":0", repo, assistClient)
	t.Cleanup(s.Stop)
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createExpense(t *testing.T, h http.Handler, amount, date, cat, notes string) core.Expense {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/expenses", map[string]any{
		"amount": json.Number(amount), "date": date, "category": cat, "notes": notes,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var e core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return e
}

func TestCreateAndListExpenses(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	e := createExpense(t, h, "12.50", "2024-03-10", "food", "Lunch with the team")
	if e.ID == "" || e.Amount.Cents != 1250 || e.Category != "food" {
		t.Fatalf("unexpected expense: %+v", e)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/expenses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/expenses", map[string]any{
		"amount": json.Number("0"), "date": "", "category": "snacks", "notes": "ab",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	for _, field := range []string{"amount", "date", "category", "notes"} {
		if resp.Errors[field] == "" {
			t.Errorf("expected an error for %q, got %v", field, resp.Errors)
		}
	}
}

func TestCreateExpenseBadBody(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetExpenseByID(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	e := createExpense(t, h, "5", "2024-03-10", "transport", "Bus ticket home")

	rec := doJSON(t, h, http.MethodGet, "/api/expenses/"+e.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/expenses/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestUpdateExpense(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	e := createExpense(t, h, "12.50", "2024-03-10", "food", "Lunch with the team")

	rec := doJSON(t, h, http.MethodPut, "/api/expenses/"+e.ID, map[string]any{
		"amount": json.Number("20"), "date": "2024-03-11", "category": "health", "notes": "Pharmacy run",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var updated core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.ID != e.ID {
		t.Errorf("update must keep the id: got %q, want %q", updated.ID, e.ID)
	}
	if updated.Amount.Cents != 2000 || updated.Category != "health" {
		t.Errorf("unexpected updated expense: %+v", updated)
	}
}

func TestUpdateUnknownExpense(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := doJSON(t, h, http.MethodPut, "/api/expenses/ghost", map[string]any{
		"amount": json.Number("20"), "date": "2024-03-11", "category": "health", "notes": "Pharmacy run",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteExpenseIdempotent(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	e := createExpense(t, h, "5", "2024-03-10", "shopping", "New headphones")

	for i := 0; i < 2; i++ {
		rec := doJSON(t, h, http.MethodDelete, "/api/expenses/"+e.ID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete #%d: expected 204, got %d", i+1, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/expenses", nil)
	var list []core.Expense
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", list)
	}
}

func TestSummary(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	createExpense(t, h, "10", "2024-03-10", "food", "Groceries for week")
	createExpense(t, h, "5", "2024-03-11", "transport", "Bus ticket home")
	createExpense(t, h, "2.50", "2024-03-12", "food", "Morning espresso")

	rec := doJSON(t, h, http.MethodGet, "/api/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Total      json.Number `json:"total"`
		Count      int         `json:"count"`
		ByCategory []struct {
			Category string      `json:"category"`
			Label    string      `json:"label"`
			Total    json.Number `json:"total"`
		} `json:"byCategory"`
	}
	dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.Total.String() != "17.50" || resp.Count != 3 {
		t.Fatalf("unexpected totals: total=%s count=%d", resp.Total, resp.Count)
	}
	if len(resp.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %+v", resp.ByCategory)
	}
	if resp.ByCategory[0].Category != "food" || resp.ByCategory[0].Label != "Food" || resp.ByCategory[0].Total.String() != "12.50" {
		t.Fatalf("unexpected food bucket: %+v", resp.ByCategory[0])
	}
}

func TestCategories(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cats []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats) != 7 || cats[0].Value != "food" || cats[6].Value != "other" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestAssistDisabled(t *testing.T) {
	h := newTestServer(t, assist.NewClient(assist.Config{})).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/assist/receipt", map[string]any{"receiptImage": "data:image/png;base64,aGVsbG8="})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("receipt: expected 503, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/assist/category", map[string]any{"description": "lunch at the diner"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("category: expected 503, got %d", rec.Code)
	}
}

func TestAssistCategorySuggestion(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Food"}]}`)
	}))
	defer api.Close()

	client := assist.NewClient(assist.Config{APIKey: "test", BaseURL: api.URL, Timeout: 5 * time.Second})
	h := newTestServer(t, client).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/assist/category", map[string]any{"description": "lunch at the diner"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp suggestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Category != "Food" || resp.Value != "food" {
		t.Fatalf("unexpected suggestion: %+v", resp)
	}
}

func TestAssistCategoryTooShort(t *testing.T) {
	client := assist.NewClient(assist.Config{APIKey: "test"})
	h := newTestServer(t, client).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/assist/category", map[string]any{"description": "ab"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAssistReceiptInvalidDataURI(t *testing.T) {
	client := assist.NewClient(assist.Config{APIKey: "test"})
	h := newTestServer(t, client).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/assist/receipt", map[string]any{"receiptImage": "not-a-data-uri"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/assist/receipt", map[string]any{"receiptImage": ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty image, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := doJSON(t, h, http.MethodPatch, "/api/expenses", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", resp)
	}
}
