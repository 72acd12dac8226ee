package imageprocessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedBody is returned when a backend response body is not valid JSON.
var ErrMalformedBody = errors.New("response body is not valid JSON")

// Request is the JSON body posted to the processing endpoint.
type Request struct {
	Model       string `json:"model"`
	APIKey      string `json:"api_key"`
	ImageBase64 string `json:"image_base64"`
}

// Result contains the raw outcome returned by the processing endpoint.
type Result struct {
	StatusCode int
	OK         bool
	Body       []byte
}

// ErrorItem is one entry of the backend's error detail list.
type ErrorItem struct {
	Error        string
	DetailedInfo string
}

// Product mirrors the record extracted from a price tag by the backend.
type Product struct {
	Name    string  `json:"name"`
	Qty     float64 `json:"qty"`
	QtyUnit string  `json:"qty_unit"`
	Price   float64 `json:"price"`
}

// Client exposes the subset of functionality used by the submission flow.
type Client interface {
	Process(ctx context.Context, req Request) (*Result, error)
}

// ParseErrorDetail extracts the ordered error list from a failure body shaped as
// {"detail": [{"error": ..., "detailed_info": ...}]}. ok is false when detail
// is missing or is not an array. Array entries that are not objects are
// skipped.
func ParseErrorDetail(body []byte) (items []ErrorItem, ok bool, err error) {
	if !json.Valid(body) {
		return nil, false, ErrMalformedBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		// valid JSON that is not an object (array, string, null...)
		return nil, false, nil
	}

	raw, found := envelope["detail"]
	if !found {
		return nil, false, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, false, nil
	}

	items = make([]ErrorItem, 0, len(entries))
	for _, entry := range entries {
		var obj map[string]any
		if err := json.Unmarshal(entry, &obj); err != nil || obj == nil {
			continue
		}
		items = append(items, ErrorItem{
			Error:        fieldString(obj["error"]),
			DetailedInfo: fieldString(obj["detailed_info"]),
		})
	}
	return items, true, nil
}

func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// DecodeProduct reports whether body describes a single extracted product.
func DecodeProduct(body []byte) (*Product, bool) {
	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, false
	}
	if p.Name == "" || p.Price <= 0 {
		return nil, false
	}
	return &p, true
}
