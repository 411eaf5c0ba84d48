// Package contract turns raw model text into a validated ResumeRecord.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"resume-optimizer/resume/model"
)

const fence = "```"

// Sanitize strips wrappers from raw, validates its shape and decodes it.
// Any failure is a *MalformedResponseError carrying raw unchanged.
func Sanitize(raw string) (model.ResumeRecord, []Warning, error) {
	var record model.ResumeRecord

	text := StripFences(raw)
	if text == "" {
		return record, nil, &MalformedResponseError{Kind: KindNotJSON, Raw: raw, Err: errors.New("empty response")}
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return record, nil, &MalformedResponseError{Kind: KindNotJSON, Raw: raw, Err: err}
	}
	if decoder.More() {
		return record, nil, &MalformedResponseError{Kind: KindNotJSON, Raw: raw, Err: errors.New("trailing data after JSON value")}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return record, nil, &MalformedResponseError{
			Kind:   KindWrongShape,
			Raw:    raw,
			Fields: []FieldError{{Field: "(root)", Message: fmt.Sprintf("expected object, got %s", jsonType(doc))}},
		}
	}
	if pi, exists := obj["personal_info"]; !exists || pi == nil {
		obj["personal_info"] = map[string]any{}
	}
	coerceNulls(obj)

	fields, err := validateShape(obj)
	if err != nil {
		return record, nil, &MalformedResponseError{Kind: KindWrongShape, Raw: raw, Err: err}
	}
	if len(fields) > 0 {
		return record, nil, &MalformedResponseError{Kind: KindWrongShape, Raw: raw, Fields: fields}
	}

	roundScore(obj)
	normalized, err := json.Marshal(obj)
	if err != nil {
		return record, nil, &MalformedResponseError{Kind: KindWrongShape, Raw: raw, Err: err}
	}
	if err := json.Unmarshal(normalized, &record); err != nil {
		return record, nil, &MalformedResponseError{Kind: KindWrongShape, Raw: raw, Err: err}
	}

	record.Normalize()
	var warnings []Warning
	if original := record.Metadata.EstimatedATSScore; record.ClampScore() {
		warnings = append(warnings, Warning{
			Code:    CodeScoreClamped,
			Field:   "metadata.estimated_ats_score",
			Message: fmt.Sprintf("score %d was outside 0-100 and was clamped to %d", original, record.Metadata.EstimatedATSScore),
		})
	}
	return record, warnings, nil
}

// StripFences removes a markdown code fence and any prose around it. Text
// that already parses as a JSON object is returned unchanged, so backticks
// inside string values survive. A fence only counts when it opens a line; its
// closing fence is either the last token or the start of a later line. With no
// fence, the span from the first '{' to the last '}' is returned if it is
// valid JSON.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "{") && json.Valid([]byte(text)) {
		return text
	}
	if start := openingFence(text); start >= 0 {
		inner := text[start+len(fence):]
		switch {
		case strings.HasSuffix(inner, fence):
			inner = inner[:len(inner)-len(fence)]
		case strings.LastIndex(inner, "\n"+fence) >= 0:
			inner = inner[:strings.LastIndex(inner, "\n"+fence)]
		}
		return strings.TrimSpace(dropLanguageTag(inner))
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		candidate := text[first : last+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return text
}

// openingFence returns the offset of the first fence that starts a line, or -1.
func openingFence(text string) int {
	if strings.HasPrefix(text, fence) {
		return 0
	}
	if i := strings.Index(text, "\n"+fence); i >= 0 {
		return i + 1
	}
	return -1
}

// dropLanguageTag removes an info string such as "json" that directly
// follows an opening fence.
func dropLanguageTag(s string) string {
	i := 0
	for i < len(s) && (unicode.IsLetter(rune(s[i])) || unicode.IsDigit(rune(s[i])) || s[i] == '-' || s[i] == '_') {
		i++
	}
	if i == 0 {
		return s
	}
	if i == len(s) || unicode.IsSpace(rune(s[i])) {
		return s[i:]
	}
	return s
}

// coerceNulls deletes null members so optional fields decode as empty, and
// drops null elements from arrays.
func coerceNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = coerceNulls(child)
		}
		return t
	case []any:
		out := t[:0]
		for _, child := range t {
			if child == nil {
				continue
			}
			out = append(out, coerceNulls(child))
		}
		return out
	default:
		return v
	}
}

func roundScore(obj map[string]any) {
	meta, ok := obj["metadata"].(map[string]any)
	if !ok {
		return
	}
	n, ok := meta["estimated_ats_score"].(json.Number)
	if !ok {
		return
	}
	f, err := n.Float64()
	if err != nil {
		return
	}
	f = math.Round(f)
	// Keep the value inside int range; ClampScore handles the rest.
	f = math.Max(math.Min(f, math.MaxInt32), math.MinInt32)
	meta["estimated_ats_score"] = json.Number(fmt.Sprintf("%.0f", f))
}

func jsonType(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "object"
	}
}

// Marshal renders a record the way it is returned to clients.
func Marshal(record model.ResumeRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
