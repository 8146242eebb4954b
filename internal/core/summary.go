package core

// CategoryTotal is a per-category sum over an expense set.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

// Summary is the derived view of an expense set: grand total, record count
// and per-category totals. It is recomputed on every read and never stored.
type Summary struct {
	Total      Money           `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
}

// Aggregate sums amounts grouped by category value. Categories with no
// expenses are omitted, not zero-filled.
func Aggregate(expenses []Expense) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		t := totals[e.Category]
		t.Cents += e.Amount.Cents
		totals[e.Category] = t
	}
	return totals
}

// GrandTotal sums all amounts. Cents arithmetic makes the result
// independent of iteration order.
func GrandTotal(expenses []Expense) Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// Summarize builds a Summary with per-category totals ordered by the given
// category order (typically the registry order). Categories not present in
// the order, such as values from a retired registry, are appended in
// first-seen order.
func Summarize(expenses []Expense, order []string) Summary {
	totals := Aggregate(expenses)
	s := Summary{
		Total: GrandTotal(expenses),
		Count: len(expenses),
	}
	seen := make(map[string]bool, len(totals))
	for _, cat := range order {
		if t, ok := totals[cat]; ok {
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: cat, Total: t})
			seen[cat] = true
		}
	}
	for _, e := range expenses {
		if t, ok := totals[e.Category]; ok && !seen[e.Category] {
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: e.Category, Total: t})
			seen[e.Category] = true
		}
	}
	return s
}
