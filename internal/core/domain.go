package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	// NotesMinLen and NotesMaxLen bound the free-text notes field.
	NotesMinLen = 3
	NotesMaxLen = 100
)

type (
	// Date is a calendar date; time-of-day carries no meaning.
	Date struct {
		time.Time
	}

	// Money is an amount in cents. Summing cents keeps aggregation exact
	// regardless of iteration order.
	Money struct {
		Cents int64
	}

	// Expense is a single recorded spending event. The ID is assigned once
	// at creation and never changes; edits replace the record wholesale.
	Expense struct {
		ID       string `json:"id"`
		Amount   Money  `json:"amount"`
		Date     Date   `json:"date"`
		Category string `json:"category"`
		Notes    string `json:"notes"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrNotesLength   = errors.New("notes must be between 3 and 100 characters")
)

// FieldErrors maps a field name to a validation message. It is the
// "Invalid" arm of a validation result: empty means valid.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "valid"
	}
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate accepts "YYYY-MM-DD" and, for payloads persisted by older
// clients, full RFC3339 datetimes. The time-of-day part is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks record-level invariants. Registry membership of the
// category and the historical date bounds are gated at the form layer,
// which owns the registry and the notion of "now".
func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if n := len([]rune(e.Notes)); n < NotesMinLen || n > NotesMaxLen {
		return ErrNotesLength
	}
	return nil
}
