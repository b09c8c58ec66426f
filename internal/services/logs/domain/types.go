// Package domain defines the types and interfaces for the logs service
package domain

import (
	"time"
)

// QuerySpec is the caller's intent for a single log query.
// When RawQuery is set it is used verbatim and the structured fields below
// it are ignored for construction; AccountID is always required for routing.
type QuerySpec struct {
	AccountID     string
	RawQuery      string
	MessageSearch string
	Filters       map[string]string
	Since         string
	Limit         int
}

// BuiltQuery is an immutable NRQL string plus the QuerySpec it was built from,
// kept for inclusion in response provenance
type BuiltQuery struct {
	NRQL string
	Spec QuerySpec

	// LimitClamped holds the effective limit when the requested one fell
	// outside the allowed range, nil otherwise
	LimitClamped *int
}

// Record is one raw log record as returned by the backend,
// an unordered mapping from attribute name to value
type Record map[string]any

// RawResult is the ordered backend result set plus the backend-reported
// total count (which may exceed len(Records))
type RawResult struct {
	Records []Record
	Total   int
}

// LogEntry is the wire shape of a single log record
type LogEntry struct {
	Timestamp  *string        `json:"timestamp"`
	Message    string         `json:"message"`
	Level      string         `json:"level"`
	Attributes map[string]any `json:"attributes"`
}

// BoundedResponse is the tool-facing payload after size bounding.
// Invariants: ReturnedResults <= TotalResults; when Truncated is false
// ReturnedResults equals TotalResults capped at the record count
type BoundedResponse struct {
	Logs            []LogEntry `json:"logs"`
	TotalResults    int        `json:"total_results"`
	ReturnedResults int        `json:"returned_results"`
	Truncated       bool       `json:"truncated"`
	QueryExecuted   string     `json:"query_executed"`
	LimitClamped    *int       `json:"limit_clamped,omitempty"`
}

// EntryFromRecord splits a raw record into the well-known fields and the
// remaining attributes. Timestamps arrive as epoch milliseconds and are
// rendered RFC3339 UTC; a missing level defaults to INFO
func EntryFromRecord(rec Record) LogEntry {
	e := LogEntry{
		Level:      "INFO",
		Attributes: make(map[string]any, len(rec)),
	}
	for k, v := range rec {
		switch k {
		case "timestamp":
			if ms, ok := toMillis(v); ok {
				s := time.UnixMilli(ms).UTC().Format(time.RFC3339)
				e.Timestamp = &s
			}
		case "message":
			if s, ok := v.(string); ok {
				e.Message = s
			}
		case "level":
			if s, ok := v.(string); ok && s != "" {
				e.Level = s
			}
		default:
			e.Attributes[k] = v
		}
	}
	return e
}

// toMillis coerces the JSON number forms a timestamp can arrive in
func toMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
