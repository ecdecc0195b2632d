// Package grid lays table rows out as a wrapped grid of names or a square
// grid of status badges, and decides the color class of each badge.
package grid

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/miosa/osa-view/table"
)

// Class is a named color class. The style package maps each one to a
// terminal style.
type Class string

const (
	ClassFast    Class = "green-background"
	ClassMedium  Class = "yellow-background"
	ClassSlow    Class = "orange-background"
	ClassError   Class = "red-background"
	ClassUnknown Class = "gray-background"
)

// Thresholds bound the fast and medium duration buckets.
type Thresholds struct {
	Fast   time.Duration
	Medium time.Duration
}

// DefaultThresholds puts anything under 100ms in the fast bucket and anything
// under a second in the medium one.
var DefaultThresholds = Thresholds{Fast: 100 * time.Millisecond, Medium: time.Second}

// Classify buckets d.
func (th Thresholds) Classify(d time.Duration) Class {
	switch {
	case d < th.Fast:
		return ClassFast
	case d < th.Medium:
		return ClassMedium
	default:
		return ClassSlow
	}
}

// StatusColorPolicy decides the class of a row's badge. Implementations
// must be pure.
type StatusColorPolicy func(row table.Row, t *table.Table) Class

var errorTokens = map[string]bool{
	"red-background": true,
	"red-text":       true,
	"error":          true,
	"failed":         true,
}

// IsError reports whether the row or its gradable cell carries an error
// class.
func IsError(row table.Row, t *table.Table) bool {
	for _, c := range row.Classes() {
		if errorTokens[strings.ToLower(c)] {
			return true
		}
	}
	if cell, ok := row.Attr(t.Gradable()); ok {
		for _, c := range strings.Fields(cell.CSS) {
			if errorTokens[strings.ToLower(c)] {
				return true
			}
		}
	}
	return false
}

// UsesDuration reports whether badges are colored by elapsed time.
func UsesDuration(t *table.Table) bool {
	switch t.ColorBy {
	case table.ColorByDuration:
		return true
	case table.ColorByDefault:
		return t.DurationColumnIdx >= 0
	}
	return false
}

// ParseDuration reads a duration cell. A bare number is milliseconds;
// anything else must be a Go duration string.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		ns := ms * float64(time.Millisecond)
		if math.IsNaN(ns) || ns < 0 || ns >= math.MaxInt64 {
			return 0, false
		}
		return time.Duration(ns), true
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// DurationClass buckets the row's duration cell. Rows without a parsable
// duration are ClassUnknown.
func DurationClass(row table.Row, t *table.Table, th Thresholds) Class {
	idx := t.DurationColumnIdx
	if idx < 0 {
		idx = t.Gradable()
	}
	cell, ok := row.Attr(idx)
	if !ok {
		return ClassUnknown
	}
	d, ok := ParseDuration(cell.Value)
	if !ok {
		return ClassUnknown
	}
	return th.Classify(d)
}

// DefaultPolicy colors by duration when the table asks for it and by the
// gradable cell's own class otherwise. Error rows are always ClassError.
func DefaultPolicy(th Thresholds) StatusColorPolicy {
	return func(row table.Row, t *table.Table) Class {
		if IsError(row, t) {
			return ClassError
		}
		if UsesDuration(t) {
			return DurationClass(row, t, th)
		}
		cell, ok := row.Attr(t.Gradable())
		if !ok {
			return ClassUnknown
		}
		fields := strings.Fields(cell.CSS)
		if len(fields) == 0 {
			return ClassUnknown
		}
		return Class(fields[0])
	}
}
