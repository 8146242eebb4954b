package events

import (
	"encoding/json"
	"time"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEvent is the message shape published on every repository
// mutation. It carries enough for downstream dashboards without requiring
// a read-back of local state.
type ExpenseEvent struct {
	Action      string    `json:"action"`
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseEvent builds an event stamped with the current time.
func NewExpenseEvent(action, id string, amountCents int64, category string) ExpenseEvent {
	return ExpenseEvent{
		Action:      action,
		ID:          id,
		AmountCents: amountCents,
		Category:    category,
		Timestamp:   time.Now(),
	}
}

func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ExpenseEvent{}, err
	}
	return ev, nil
}
