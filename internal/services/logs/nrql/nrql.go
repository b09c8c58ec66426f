// Package nrql composes NRQL query strings from structured query specs
package nrql

import (
	"sort"
	"strconv"
	"strings"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
)

// Defaults applied when a spec leaves the corresponding field empty
const (
	DefaultSince = "1 hour ago"
	DefaultLimit = 100
	MaxLimit     = 2000
)

// Builder turns a QuerySpec into a single NRQL string.
// The zero value uses the package defaults
type Builder struct {
	DefaultSince string
	DefaultLimit int
	MaxLimit     int
}

// Build composes the NRQL query for spec.
// A set RawQuery is returned verbatim; otherwise the structured fields are
// assembled into SELECT * FROM Log [WHERE ...] SINCE ... LIMIT ...
func (b Builder) Build(spec domain.QuerySpec) (domain.BuiltQuery, error) {
	if strings.TrimSpace(spec.AccountID) == "" {
		return domain.BuiltQuery{}, perr.WithField(
			perr.Validationf("account_id is required"), "account_id")
	}

	if spec.RawQuery != "" {
		// caller assumes full responsibility for correctness
		return domain.BuiltQuery{NRQL: spec.RawQuery, Spec: spec}, nil
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM Log")

	where, err := b.whereClauses(spec)
	if err != nil {
		return domain.BuiltQuery{}, err
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	since := spec.Since
	if since == "" {
		since = b.defaultSince()
	}
	sb.WriteString(" SINCE ")
	sb.WriteString(since)

	limit, clamped := b.clampLimit(spec.Limit)
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(limit))

	built := domain.BuiltQuery{NRQL: sb.String(), Spec: spec}
	if clamped {
		built.LimitClamped = &limit
	}
	return built, nil
}

// whereClauses returns the AND-joined clause list in deterministic order:
// the message search first, then filters by sorted key
func (b Builder) whereClauses(spec domain.QuerySpec) ([]string, error) {
	var clauses []string

	if spec.MessageSearch != "" {
		esc, err := escapeLiteral(spec.MessageSearch)
		if err != nil {
			return nil, perr.WithField(err, "message_search")
		}
		clauses = append(clauses, "message LIKE '%"+esc+"%'")
	}

	keys := make([]string, 0, len(spec.Filters))
	for k := range spec.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := checkAttributeName(k); err != nil {
			return nil, perr.WithField(err, "filters")
		}
		lit, err := valueLiteral(spec.Filters[k])
		if err != nil {
			return nil, perr.WithField(err, "filters")
		}
		clauses = append(clauses, k+" = "+lit)
	}
	return clauses, nil
}

// valueLiteral renders a filter value as an NRQL literal: booleans and bare
// numbers stay unquoted, everything else becomes a quoted string
func valueLiteral(v string) (string, error) {
	switch strings.ToLower(v) {
	case "true", "false":
		return strings.ToLower(v), nil
	}
	if isNumberLiteral(v) {
		return v, nil
	}
	esc, err := escapeLiteral(v)
	if err != nil {
		return "", err
	}
	return "'" + esc + "'", nil
}

// isNumberLiteral reports whether v is a plain decimal number: an optional
// leading minus, digits, at most one decimal point. Anything ParseFloat
// would also take (Inf, NaN, exponents, hex floats, a leading plus) is not
// an NRQL number and stays a quoted string
func isNumberLiteral(v string) bool {
	s := strings.TrimPrefix(v, "-")
	if s == "" {
		return false
	}
	digits, dot := 0, false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// escapeLiteral escapes a string for inclusion in a single-quoted NRQL
// literal. Quotes are doubled per the NRQL grammar; control characters have
// no escape form and are rejected rather than passed through
func escapeLiteral(s string) (string, error) {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", perr.Validationf("control character U+%04X not allowed in query text", r)
		}
	}
	return strings.ReplaceAll(s, "'", "''"), nil
}

// checkAttributeName rejects filter keys that could break out of the clause.
// NRQL attribute names are not quoted here, so the character set is strict
func checkAttributeName(k string) error {
	if k == "" {
		return perr.Validationf("filter key must not be empty")
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.':
		default:
			return perr.Validationf("filter key %q contains unsupported character %q", k, r)
		}
	}
	return nil
}

// clampLimit clamps into [1, MaxLimit], applying the default for zero.
// Out-of-range values are clamped rather than rejected; the second return
// reports whether clamping changed the caller's value
func (b Builder) clampLimit(limit int) (int, bool) {
	maxLimit := b.MaxLimit
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if limit == 0 {
		def := b.DefaultLimit
		if def <= 0 {
			def = DefaultLimit
		}
		return def, false
	}
	if limit < 1 {
		return 1, true
	}
	if limit > maxLimit {
		return maxLimit, true
	}
	return limit, false
}

func (b Builder) defaultSince() string {
	if b.DefaultSince != "" {
		return b.DefaultSince
	}
	return DefaultSince
}
