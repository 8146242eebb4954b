// Package form implements the expense entry state machine: a draft moves
// through Closed -> Creating/Editing -> Closed, with a validation gate in
// front of every commit. The UI layer is reduced to dispatching intents
// into a Controller; assist results only populate draft fields and are
// discarded when they arrive late.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"spendwise/internal/assist"
	"spendwise/internal/category"
	"spendwise/internal/core"
)

// State names the controller states.
type State string

const (
	Closed   State = "closed"
	Creating State = "creating"
	Editing  State = "editing"
)

// MinDate is the fixed historical bound: no expense may be dated before it.
var MinDate = core.NewDate(2000, 1, 1)

// ErrNotFound is returned by OpenEdit for an unknown record id.
var ErrNotFound = errors.New("expense not found")

// Draft holds the raw form fields before validation. Amount and date stay
// strings until the validation gate parses them.
type Draft struct {
	Amount   string
	Date     string
	Category string
	Notes    string
}

// Repository is the slice of the expense repository the controller needs.
type Repository interface {
	Add(ctx context.Context, e core.Expense) (core.Expense, error)
	Update(ctx context.Context, e core.Expense) error
	Get(id string) (core.Expense, bool)
}

// AssistToken captures the form generation at the moment an assist call is
// started. A token from a form that has since closed, cancelled or
// switched records no longer matches and its result is discarded.
type AssistToken uint64

// Controller is the form state machine. All methods are safe for
// concurrent use; in practice a single UI context drives it.
type Controller struct {
	mu        sync.Mutex
	repo      Repository
	state     State
	draft     Draft
	editingID string
	gen       uint64

	now func() time.Time
}

func New(repo Repository) *Controller {
	return &Controller{
		repo:  repo,
		state: Closed,
		now:   time.Now,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the current draft fields.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// OpenNew transitions Closed -> Creating with an empty draft dated today.
func (c *Controller) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Creating
	c.editingID = ""
	c.draft = Draft{Date: core.Today().String()}
	c.gen++
}

// OpenEdit transitions Closed -> Editing with the draft pre-populated from
// the stored record.
func (c *Controller) OpenEdit(id string) error {
	e, ok := c.repo.Get(id)
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Editing
	c.editingID = e.ID
	c.draft = Draft{
		Amount:   e.Amount.String(),
		Date:     e.Date.String(),
		Category: e.Category,
		Notes:    e.Notes,
	}
	c.gen++
	return nil
}

// Cancel discards the draft and closes the form.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

// SetDraft replaces the draft fields. Ignored while the form is closed.
func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		return
	}
	c.draft = d
}

// Submit runs the validation gate and commits: Add when creating, Update
// (with the original id preserved) when editing. On success the form
// closes; on validation failure the state and draft are kept so the user
// can correct the fields.
func (c *Controller) Submit(ctx context.Context) (core.Expense, error) {
	c.mu.Lock()
	state := c.state
	draft := c.draft
	editingID := c.editingID
	now := c.now()
	c.mu.Unlock()

	if state == Closed {
		return core.Expense{}, core.FieldErrors{"form": "form is not open"}
	}

	e, ferr := Validate(draft, now)
	if len(ferr) > 0 {
		return core.Expense{}, ferr
	}

	var committed core.Expense
	var err error
	if state == Editing {
		e.ID = editingID
		committed = e
		err = c.repo.Update(ctx, e)
	} else {
		committed, err = c.repo.Add(ctx, e)
	}
	if err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	c.close()
	c.mu.Unlock()
	return committed, nil
}

// AssistToken returns a token tied to the current form generation. Valid
// only while the form stays open on the same record.
func (c *Controller) AssistToken() AssistToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	return AssistToken(c.gen)
}

// ApplyReceipt populates the draft from a receipt scan. A stale token or a
// closed form discards the result and returns false. Values are applied as
// given; validation still happens at submit.
func (c *Controller) ApplyReceipt(token AssistToken, fields assist.ReceiptFields) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed || uint64(token) != c.gen {
		return false
	}
	c.draft.Amount = fields.Amount.String()
	c.draft.Date = fields.Date.String()
	c.draft.Notes = fields.Notes
	return true
}

// ApplySuggestion maps a suggested label back to a registry value and sets
// the draft category. It returns the matched entry; ok is false when the
// token is stale, the form is closed, or the label matches nothing - in
// which case the category is left unset rather than applied blindly.
func (c *Controller) ApplySuggestion(token AssistToken, label string) (category.Category, bool) {
	cat, matched := category.MatchLabel(label)
	if !matched {
		return category.Category{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed || uint64(token) != c.gen {
		return category.Category{}, false
	}
	c.draft.Category = cat.Value
	return cat, true
}

// close resets to Closed. Callers hold the lock.
func (c *Controller) close() {
	c.state = Closed
	c.editingID = ""
	c.draft = Draft{}
	c.gen++
}

// Validate is the gate in front of every commit: it parses the raw draft
// and either returns a committable Expense or the per-field errors.
func Validate(d Draft, now time.Time) (core.Expense, core.FieldErrors) {
	ferr := core.FieldErrors{}
	var e core.Expense

	cents, err := core.ParseDecimalToCents(d.Amount)
	if err != nil {
		ferr["amount"] = "amount must be a positive number"
	} else {
		e.Amount = core.Money{Cents: cents}
	}

	if strings.TrimSpace(d.Date) == "" {
		ferr["date"] = "date is required"
	} else if date, err := core.ParseDate(d.Date); err != nil {
		ferr["date"] = "date must be YYYY-MM-DD"
	} else {
		today := core.NewDate(now.Year(), int(now.Month()), now.Day())
		switch {
		case date.After(today.Time):
			ferr["date"] = "date cannot be in the future"
		case date.Before(MinDate.Time):
			ferr["date"] = "date is before " + MinDate.String()
		default:
			e.Date = date
		}
	}

	if strings.TrimSpace(d.Category) == "" {
		ferr["category"] = "category is required"
	} else if !category.IsValid(d.Category) {
		ferr["category"] = "unknown category"
	} else {
		e.Category = d.Category
	}

	notes := strings.TrimSpace(d.Notes)
	if n := len([]rune(notes)); n < core.NotesMinLen {
		ferr["notes"] = "please add more details"
	} else if n > core.NotesMaxLen {
		ferr["notes"] = "notes are too long"
	} else {
		e.Notes = notes
	}

	if len(ferr) > 0 {
		return core.Expense{}, ferr
	}
	return e, nil
}
