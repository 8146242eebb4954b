package core

import (
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Fatalf("unexpected date: %s", d)
	}

	// Legacy payloads carry full ISO datetimes.
	d, err = ParseDate("2024-01-05T13:45:00.000Z")
	if err != nil {
		t.Fatalf("expected ok for RFC3339, got %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Fatalf("time-of-day should be dropped, got %s", d)
	}

	for _, bad := range []string{"", "05/01/2024", "not-a-date", "2024-13-40"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 1, 5)
	data, err := d.MarshalJSON()
	if err != nil || string(data) != `"2024-01-05"` {
		t.Fatalf("unexpected marshal: %s (err=%v)", data, err)
	}

	var parsed Date
	if err := parsed.UnmarshalJSON([]byte(`"2024-01-05"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %s != %s", parsed, d)
	}

	if err := parsed.UnmarshalJSON([]byte(`"garbage"`)); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:   Money{Cents: 1250},
		Date:     NewDate(2024, 1, 5),
		Category: "food",
		Notes:    "Lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Amount: Money{Cents: 0}, Date: NewDate(2024, 1, 5), Category: "food", Notes: "Lunch"},
		{Amount: Money{Cents: -100}, Date: NewDate(2024, 1, 5), Category: "food", Notes: "Lunch"},
		{Amount: Money{Cents: 100}, Date: Date{Time: time.Time{}}, Category: "food", Notes: "Lunch"},
		{Amount: Money{Cents: 100}, Date: NewDate(2024, 1, 5), Category: "", Notes: "Lunch"},
		{Amount: Money{Cents: 100}, Date: NewDate(2024, 1, 5), Category: "food", Notes: "ab"},
		{Amount: Money{Cents: 100}, Date: NewDate(2024, 1, 5), Category: "food", Notes: strings.Repeat("x", 101)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{"amount": "must be positive", "notes": "too short"}
	msg := fe.Error()
	if !strings.Contains(msg, "amount: must be positive") || !strings.Contains(msg, "notes: too short") {
		t.Fatalf("unexpected message: %q", msg)
	}
}
