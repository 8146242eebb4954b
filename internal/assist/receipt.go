package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/core"
)

// ReceiptFields is the structured result of a receipt scan. Fields the
// model could not extract carry defaults (zero amount, today's date, a
// placeholder note); the call as a whole fails only on transport errors.
type ReceiptFields struct {
	Amount core.Money `json:"amount"`
	Date   core.Date  `json:"date"`
	Notes  string     `json:"notes"`
}

const receiptSystemPrompt = `You are an expert receipt analyzer. Extract the total amount, the purchase date and a brief summary of the items or vendor from the receipt image.
Respond with ONLY a JSON object in this exact shape, no other text:
{"amount": <number>, "date": "YYYY-MM-DD", "notes": "<string>"}
If you cannot determine a value, use a sensible default: 0 for amount, today's date, or "N/A" for notes.`

// receiptPayload is the lenient wire shape the model is asked for.
type receiptPayload struct {
	Amount json.Number `json:"amount"`
	Date   string      `json:"date"`
	Notes  string      `json:"notes"`
}

// AnalyzeReceipt sends the receipt image (a base64 data URI with a MIME
// prefix) and maps the model's reply into ReceiptFields, substituting
// defaults for anything unusable.
func (c *Client) AnalyzeReceipt(ctx context.Context, dataURI string) (ReceiptFields, error) {
	mediaType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return ReceiptFields{}, err
	}

	text, err := c.complete(ctx, receiptSystemPrompt, []contentBlock{
		{Type: "image", Source: &imageSource{Type: "base64", MediaType: mediaType, Data: data}},
		{Type: "text", Text: "Analyze this receipt."},
	})
	if err != nil {
		return ReceiptFields{}, err
	}

	return parseReceiptReply(ctx, text), nil
}

// parseReceiptReply maps the model output to fields, never failing: an
// unusable value in any field (or the whole reply) becomes that field's
// default, per the collaborator contract.
func parseReceiptReply(ctx context.Context, text string) ReceiptFields {
	fields := ReceiptFields{
		Amount: core.Money{Cents: 0},
		Date:   core.Today(),
		Notes:  "N/A",
	}

	var payload receiptPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		slog.WarnContext(ctx, "Receipt reply not parseable, using defaults",
			"error", err)
		return fields
	}

	if f, err := payload.Amount.Float64(); err == nil && f > 0 {
		if cents, err := core.ParseDecimalToCents(payload.Amount.String()); err == nil {
			fields.Amount = core.Money{Cents: cents}
		} else {
			fields.Amount = core.Money{Cents: int64(f*100 + 0.5)}
		}
	}
	if d, err := core.ParseDate(payload.Date); err == nil {
		fields.Date = d
	} else {
		slog.WarnContext(ctx, "Receipt date not parseable, using today",
			"date", payload.Date)
	}
	if notes := strings.TrimSpace(payload.Notes); notes != "" {
		fields.Notes = notes
	}

	return fields
}

// decodeDataURI splits a "data:<mime>;base64,<data>" string into its MIME
// type and raw base64 payload.
func decodeDataURI(s string) (mediaType, data string, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(s, prefix) {
		return "", "", fmt.Errorf("receipt image must be a base64 data URI")
	}
	rest := s[len(prefix):]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return "", "", fmt.Errorf("receipt image data URI missing payload")
	}
	mediaType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" || mediaType == "" {
		return "", "", fmt.Errorf("receipt image data URI must be base64 encoded with a MIME type")
	}
	return mediaType, payload, nil
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
