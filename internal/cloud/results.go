// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Summary is a remote knowledge base as returned by list and search. Only
// the fields callers address or display are decoded; Raw keeps the full
// server object.
type Summary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Raw         json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw object. A
// numeric id is kept in its decimal text form.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var p struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	id, err := decodeID(p.ID)
	if err != nil {
		return err
	}
	*s = Summary{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Raw:         append(json.RawMessage(nil), data...),
	}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("id must be a string or number, got %s", raw)
}

// MarshalJSON writes the raw server object when present.
func (s Summary) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	type plain Summary
	return json.Marshal(plain(s))
}

// Result is the reply of upload, sync, and delete. A 2xx reply may still
// report Success false with a Message; callers decide how to present it.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw object.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Result(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw server object when present.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain Result
	return json.Marshal(plain(r))
}

// SearchResult is the reply of search.
type SearchResult struct {
	Results []Summary       `json:"results"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw object.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type plain SearchResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SearchResult(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw server object when present.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain SearchResult
	return json.Marshal(plain(r))
}

// decodeResult decodes a 2xx reply of upload, sync, or delete. An empty body
// is a zero Result; valid JSON that is not an object is kept in Raw.
func decodeResult(body []byte) (*Result, error) {
	var r Result
	if err := decodeLenient(body, &r, &r.Raw); err != nil {
		return nil, err
	}
	return &r, nil
}

// decodeSearchResult decodes a 2xx search reply with the same rules as
// decodeResult.
func decodeSearchResult(body []byte) (*SearchResult, error) {
	var r SearchResult
	if err := decodeLenient(body, &r, &r.Raw); err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeLenient(body []byte, v any, raw *json.RawMessage) error {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return nil
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, v); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		return nil
	case json.Valid(trimmed):
		*raw = append(json.RawMessage(nil), trimmed...)
		return nil
	default:
		return errors.New("parsing response: body is not JSON")
	}
}

// Format selects the visualization encoding.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// Visualization is a server-rendered artifact. SVG is set for FormatSVG and
// JSON for FormatJSON; neither is parsed or validated.
type Visualization struct {
	Format Format
	SVG    string
	JSON   json.RawMessage
}

// Bytes returns the artifact as written by the server.
func (v *Visualization) Bytes() []byte {
	if v.Format == FormatJSON {
		return v.JSON
	}
	return []byte(v.SVG)
}
