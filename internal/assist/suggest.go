package assist

import (
	"context"
	"fmt"
	"strings"

	"spendwise/internal/category"
	"spendwise/internal/core"
)

// MinDescriptionLen is the shortest description worth suggesting on.
const MinDescriptionLen = core.NotesMinLen

var ErrDescriptionTooShort = fmt.Errorf("description must be at least %d characters", MinDescriptionLen)

// SuggestCategory asks the model for one category label drawn from the
// registry's label enumeration and returns it verbatim (trimmed). Mapping
// the label back to a registry value is the caller's job via
// category.MatchLabel; an unmatched label is "no suggestion", not an error.
func (c *Client) SuggestCategory(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) < MinDescriptionLen {
		return "", ErrDescriptionTooShort
	}

	system := fmt.Sprintf(`You are an expense classifier.
Classify the user's expense description into exactly ONE of these categories:
%s

IMPORTANT: Respond with ONLY the category name, exactly as written above. No other text.`,
		strings.Join(category.Labels(), ", "))

	text, err := c.complete(ctx, system, []contentBlock{
		{Type: "text", Text: "Description: " + description},
	})
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(text)
	label = strings.Trim(label, `."'`)
	return label, nil
}
