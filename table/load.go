package table

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Parse decodes a JSON table. Absent column indices default to -1; when both
// are absent and a header is present, the gradable column is detected from
// the header labels.
func Parse(data []byte) (*Table, error) {
	t := &Table{DurationColumnIdx: -1, GradableColumnIdx: -1}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "decode table")
	}
	if t.GradableColumnIdx == -1 && t.DurationColumnIdx == -1 && t.Header != nil {
		t.GradableColumnIdx = DetectGradable(*t.Header)
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid table")
	}
	return t, nil
}

// Load reads and parses a JSON table from r.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read table")
	}
	return Parse(data)
}

// LoadFile reads and parses the JSON table at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read table %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}

// LooksLikeTable reports whether data appears to be a JSON table rather than
// plain or ANSI text.
func LooksLikeTable(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	return len(probe.Body) > 0 && probe.Body[0] == '['
}
