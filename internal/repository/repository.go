// Package repository owns the authoritative in-memory expense collection,
// synchronized to the persistence store on every mutation and mirrored to
// the optional event stream.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/events"
	"spendwise/internal/kv"
)

// DefaultKey is the logical key holding the whole collection, matching the
// storage contract clients have always used.
const DefaultKey = "expenses"

var ErrNotFound = errors.New("expense not found")

// Repository holds expenses in insertion order. List applies the
// presentation sort; the stored order is never rewritten, which is what
// keeps the date-tie ordering stable.
type Repository struct {
	mu        sync.Mutex
	store     kv.Store
	key       string
	publisher events.Publisher // nil when no broker is configured
	items     []core.Expense

	newID func() string
}

// New loads the persisted collection. A malformed or unreadable payload
// degrades to an empty collection; startup never fails on bad data.
func New(ctx context.Context, store kv.Store, key string, publisher events.Publisher) *Repository {
	if key == "" {
		key = DefaultKey
	}
	r := &Repository{
		store:     store,
		key:       key,
		publisher: publisher,
		newID:     uuid.NewString,
	}
	r.items = kv.Load(ctx, store, key, []core.Expense{})
	slog.InfoContext(ctx, "Expense repository loaded",
		"key", key, "count", len(r.items))
	return r
}

// Add assigns a fresh id, appends the record and persists the collection.
// The returned expense carries the generated id.
func (r *Repository) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	r.mu.Lock()
	e.ID = r.newID()
	r.items = append(r.items, e)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.publish(ctx, events.NewExpenseEvent(events.ActionCreated, e.ID, e.Amount.Cents, e.Category))
	return e, nil
}

// Update replaces the record whose id matches e.ID wholesale.
func (r *Repository) Update(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	idx := r.indexLocked(e.ID)
	if idx < 0 {
		r.mu.Unlock()
		return ErrNotFound
	}
	r.items[idx] = e
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.publish(ctx, events.NewExpenseEvent(events.ActionUpdated, e.ID, e.Amount.Cents, e.Category))
	return nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op, so the operation is idempotent.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.publish(ctx, events.NewExpenseEvent(events.ActionDeleted, removed.ID, removed.Amount.Cents, removed.Category))
	return nil
}

// Get returns the record with the given id.
func (r *Repository) Get(id string) (core.Expense, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return core.Expense{}, false
	}
	return r.items[idx], true
}

// List returns a copy of the collection ordered by descending date.
// Records sharing a date keep their relative insertion order.
func (r *Repository) List() []core.Expense {
	r.mu.Lock()
	out := make([]core.Expense, len(r.items))
	copy(out, r.items)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Repository) indexLocked(id string) int {
	for i, e := range r.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full collection through the store adapter. The
// write is best-effort: on failure the in-memory state stands and the
// condition is logged, losing at most this mutation on a crash.
func (r *Repository) persistLocked(ctx context.Context) {
	if err := kv.Save(ctx, r.store, r.key, r.items); err != nil {
		slog.ErrorContext(ctx, "Failed to persist expense collection",
			"key", r.key, "count", len(r.items), "error", err)
	}
}

func (r *Repository) publish(ctx context.Context, ev events.ExpenseEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", ev.Action, "expense_id", ev.ID, "error", err)
	}
}
