package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/assist"
	"spendwise/internal/core"
	"spendwise/internal/kv/memory"
	"spendwise/internal/repository"
)

func newTestController(t *testing.T) (*Controller, *repository.Repository) {
	t.Helper()
	repo := repository.New(context.Background(), memory.New(), "expenses", nil)
	return New(repo), repo
}

func validDraft() Draft {
	return Draft{
		Amount:   "12.50",
		Date:     "2024-01-05",
		Category: "food",
		Notes:    "Lunch",
	}
}

func TestTransitions(t *testing.T) {
	c, _ := newTestController(t)
	if c.State() != Closed {
		t.Fatalf("expected Closed, got %s", c.State())
	}

	c.OpenNew()
	if c.State() != Creating {
		t.Fatalf("expected Creating, got %s", c.State())
	}
	if c.Draft().Date == "" {
		t.Fatalf("new draft should be pre-dated with today")
	}

	c.Cancel()
	if c.State() != Closed {
		t.Fatalf("expected Closed after cancel, got %s", c.State())
	}

	if err := c.OpenEdit("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitCreating(t *testing.T) {
	c, repo := newTestController(t)
	c.OpenNew()
	c.SetDraft(validDraft())

	e, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e.ID == "" || e.Amount.Cents != 1250 || e.Category != "food" || e.Notes != "Lunch" {
		t.Fatalf("unexpected committed record: %+v", e)
	}
	if c.State() != Closed {
		t.Fatalf("form should close on successful submit")
	}
	if repo.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", repo.Len())
	}
}

func TestSubmitValidationGate(t *testing.T) {
	c, repo := newTestController(t)

	future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	cases := []struct {
		name  string
		draft Draft
		field string
	}{
		{"zero amount", Draft{Amount: "0", Date: "2024-01-05", Category: "food", Notes: "Lunch"}, "amount"},
		{"negative amount", Draft{Amount: "-5", Date: "2024-01-05", Category: "food", Notes: "Lunch"}, "amount"},
		{"missing date", Draft{Amount: "5", Date: "", Category: "food", Notes: "Lunch"}, "date"},
		{"future date", Draft{Amount: "5", Date: future, Category: "food", Notes: "Lunch"}, "date"},
		{"before minimum", Draft{Amount: "5", Date: "1999-12-31", Category: "food", Notes: "Lunch"}, "date"},
		{"missing category", Draft{Amount: "5", Date: "2024-01-05", Category: "", Notes: "Lunch"}, "category"},
		{"unknown category", Draft{Amount: "5", Date: "2024-01-05", Category: "groceries", Notes: "Lunch"}, "category"},
		{"short notes", Draft{Amount: "5", Date: "2024-01-05", Category: "food", Notes: "ab"}, "notes"},
	}

	for _, tc := range cases {
		c.OpenNew()
		c.SetDraft(tc.draft)
		_, err := c.Submit(context.Background())
		var ferr core.FieldErrors
		if !errors.As(err, &ferr) {
			t.Fatalf("%s: expected field errors, got %v", tc.name, err)
		}
		if _, ok := ferr[tc.field]; !ok {
			t.Fatalf("%s: expected error on %q, got %v", tc.name, tc.field, ferr)
		}
		if c.State() != Creating {
			t.Fatalf("%s: form must stay open on validation failure", tc.name)
		}
		c.Cancel()
	}

	if repo.Len() != 0 {
		t.Fatalf("invalid drafts must never reach the repository, got %d records", repo.Len())
	}
}

func TestSubmitEditingPreservesID(t *testing.T) {
	c, repo := newTestController(t)
	existing, err := repo.Add(context.Background(), core.Expense{
		Amount:   core.Money{Cents: 1000},
		Date:     core.NewDate(2024, 1, 5),
		Category: "food",
		Notes:    "Lunch",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := c.OpenEdit(existing.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	if c.State() != Editing {
		t.Fatalf("expected Editing, got %s", c.State())
	}
	d := c.Draft()
	if d.Amount != "10.00" || d.Category != "food" || d.Notes != "Lunch" {
		t.Fatalf("draft not pre-populated: %+v", d)
	}

	d.Amount = "25.00"
	d.Notes = "Team lunch"
	c.SetDraft(d)

	e, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e.ID != existing.ID {
		t.Fatalf("edit must preserve the original id: %q != %q", e.ID, existing.ID)
	}
	got, _ := repo.Get(existing.ID)
	if got.Amount.Cents != 2500 || got.Notes != "Team lunch" {
		t.Fatalf("edit not applied: %+v", got)
	}
	if repo.Len() != 1 {
		t.Fatalf("edit must replace, not append")
	}
}

func TestSubmitClosedForm(t *testing.T) {
	c, _ := newTestController(t)
	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected error submitting a closed form")
	}
}

func TestApplyReceiptPopulatesDraft(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenNew()
	token := c.AssistToken()

	ok := c.ApplyReceipt(token, assist.ReceiptFields{
		Amount: core.Money{Cents: 4299},
		Date:   core.NewDate(2024, 3, 10),
		Notes:  "Hardware store",
	})
	if !ok {
		t.Fatalf("expected receipt to apply")
	}
	d := c.Draft()
	if d.Amount != "42.99" || d.Date != "2024-03-10" || d.Notes != "Hardware store" {
		t.Fatalf("draft not populated: %+v", d)
	}
}

func TestLateReceiptDiscarded(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenNew()
	token := c.AssistToken()

	// The user closes the form while the analysis is in flight.
	c.Cancel()
	if ok := c.ApplyReceipt(token, assist.ReceiptFields{Notes: "stale"}); ok {
		t.Fatalf("late receipt result must be discarded")
	}

	// Re-opening mints a new generation; the old token stays dead.
	c.OpenNew()
	if ok := c.ApplyReceipt(token, assist.ReceiptFields{Notes: "stale"}); ok {
		t.Fatalf("token from a previous form session must not apply")
	}
	if c.Draft().Notes == "stale" {
		t.Fatalf("stale data leaked into the draft")
	}
}

func TestApplySuggestion(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenNew()
	token := c.AssistToken()

	cat, ok := c.ApplySuggestion(token, "Food")
	if !ok || cat.Value != "food" {
		t.Fatalf("expected Food to map to food, got %+v ok=%v", cat, ok)
	}
	if c.Draft().Category != "food" {
		t.Fatalf("category not applied to draft")
	}

	if _, ok := c.ApplySuggestion(token, "Groceries"); ok {
		t.Fatalf("unmatched label must not be applied")
	}
	if c.Draft().Category != "food" {
		t.Fatalf("unmatched label must leave the draft untouched")
	}

	c.Cancel()
	if _, ok := c.ApplySuggestion(token, "Food"); ok {
		t.Fatalf("suggestion for a closed form must be discarded")
	}
}
