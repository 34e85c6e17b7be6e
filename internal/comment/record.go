package comment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is a single comment as produced by acquisition and labelling.
// Fields the pipeline does not interpret are kept in Meta and written back
// unchanged.
type Record struct {
	ID        string
	ParentID  string // empty means root
	Body      string
	URL       string
	Permalink string
	Label     string

	Meta map[string]json.RawMessage
}

// Keys with meaning to the pipeline. Everything else is passthrough.
var knownKeys = map[string]bool{
	"id":        true,
	"parent_id": true,
	"body":      true,
	"url":       true,
	"permalink": true,
	"label":     true,
	"children":  true,
	"images":    true,
}

// HasParent reports whether the record declares a parent.
func (r Record) HasParent() bool {
	return r.ParentID != ""
}

// SearchText joins the text-bearing fields that may carry media links.
func (r Record) SearchText() string {
	return r.Body + " " + r.URL + " " + r.Permalink
}

// MetaString returns a passthrough string field, or "" when absent.
func (r Record) MetaString(key string) string {
	raw, ok := r.Meta[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SetMeta stores a passthrough value, replacing any previous one.
func (r *Record) SetMeta(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if r.Meta == nil {
		r.Meta = make(map[string]json.RawMessage)
	}
	r.Meta[key] = raw
	return nil
}

// UnmarshalJSON accepts ids as strings or numbers and null parents.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Record{}
	var err error
	if r.ID, err = idField(fields["id"]); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	if r.ParentID, err = idField(fields["parent_id"]); err != nil {
		return fmt.Errorf("decoding parent_id: %w", err)
	}
	for key, dst := range map[string]*string{
		"body":      &r.Body,
		"url":       &r.URL,
		"permalink": &r.Permalink,
		"label":     &r.Label,
	} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
	}

	for key, raw := range fields {
		if knownKeys[key] {
			continue
		}
		if r.Meta == nil {
			r.Meta = make(map[string]json.RawMessage)
		}
		r.Meta[key] = raw
	}
	return nil
}

// MarshalJSON writes the passthrough fields alongside the known ones.
// A missing parent is written as null.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields())
}

func (r Record) fields() map[string]any {
	out := make(map[string]any, len(r.Meta)+6)
	for k, v := range r.Meta {
		out[k] = v
	}
	out["id"] = r.ID
	if r.ParentID != "" {
		out["parent_id"] = r.ParentID
	} else {
		out["parent_id"] = nil
	}
	out["body"] = r.Body
	if r.URL != "" {
		out["url"] = r.URL
	}
	if r.Permalink != "" {
		out["permalink"] = r.Permalink
	}
	if r.Label != "" {
		out["label"] = r.Label
	}
	return out
}

// Fields returns the record as a JSON object map, for callers that add
// their own keys (children, images) before encoding.
func (r Record) Fields() map[string]any {
	return r.fields()
}

func idField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", raw)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", err
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
