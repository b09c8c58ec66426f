package nrql

import (
	"strings"
	"testing"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
)

func TestRawQueryPassthrough(t *testing.T) {
	raw := "SELECT count(*) FROM Log FACET level SINCE 2 days ago"
	spec := domain.QuerySpec{
		AccountID:     "123",
		RawQuery:      raw,
		MessageSearch: "ignored",
		Filters:       map[string]string{"level": "ERROR"},
		Since:         "ignored too",
		Limit:         5,
	}
	built, err := Builder{}.Build(spec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.NRQL != raw {
		t.Fatalf("raw query not passed through verbatim: %q", built.NRQL)
	}
	if built.LimitClamped != nil {
		t.Fatalf("raw query must not report clamping")
	}
}

func TestRawQueryStillRequiresAccountID(t *testing.T) {
	_, err := Builder{}.Build(domain.QuerySpec{RawQuery: "SELECT * FROM Log"})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if e, ok := perr.As(err); !ok || e.Field() != "account_id" {
		t.Fatalf("error should name account_id, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{AccountID: "123"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "SELECT * FROM Log SINCE 1 hour ago LIMIT 100"
	if built.NRQL != want {
		t.Fatalf("Build = %q, want %q", built.NRQL, want)
	}
}

func TestNoWhereClauseWhenUnfiltered(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{AccountID: "1", Since: "3 days ago", Limit: 10})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(built.NRQL, "WHERE") {
		t.Fatalf("unexpected WHERE clause: %q", built.NRQL)
	}
}

func TestFiltersOnly(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{
		AccountID: "123",
		Filters:   map[string]string{"user_email": "a@b.com"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(built.NRQL, "WHERE user_email = 'a@b.com'") {
		t.Fatalf("missing equality clause: %q", built.NRQL)
	}
	if strings.Contains(built.NRQL, "LIKE") {
		t.Fatalf("unexpected LIKE clause: %q", built.NRQL)
	}
}

func TestMessageSearchAndFilterOrder(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{
		AccountID:     "123",
		MessageSearch: "timeout",
		Filters:       map[string]string{"service": "billing", "level": "ERROR"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// message clause first, then filters in sorted key order
	want := "SELECT * FROM Log WHERE message LIKE '%timeout%'" +
		" AND level = 'ERROR' AND service = 'billing' SINCE 1 hour ago LIMIT 100"
	if built.NRQL != want {
		t.Fatalf("Build = %q, want %q", built.NRQL, want)
	}
}

func TestQuoteEscaping(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{
		AccountID:     "123",
		MessageSearch: "it's broken",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(built.NRQL, "message LIKE '%it''s broken%'") {
		t.Fatalf("quote not doubled: %q", built.NRQL)
	}
	// well-formed: every quote is balanced
	if strings.Count(built.NRQL, "'")%2 != 0 {
		t.Fatalf("unbalanced quotes in %q", built.NRQL)
	}
}

func TestQuoteEscapingInFilterValue(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{
		AccountID: "123",
		Filters:   map[string]string{"name": "o'neill"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(built.NRQL, "name = 'o''neill'") {
		t.Fatalf("filter quote not doubled: %q", built.NRQL)
	}
}

func TestControlCharactersRejected(t *testing.T) {
	cases := []domain.QuerySpec{
		{AccountID: "1", MessageSearch: "bad\nsearch"},
		{AccountID: "1", Filters: map[string]string{"k": "bad\x00value"}},
	}
	for _, spec := range cases {
		_, err := Builder{}.Build(spec)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("control character should fail validation, got %v", err)
		}
	}
}

func TestFilterKeyRejected(t *testing.T) {
	bad := []string{"", "a b", "k='x' OR 1", "semi;colon"}
	for _, k := range bad {
		spec := domain.QuerySpec{AccountID: "1", Filters: map[string]string{k: "v"}}
		_, err := Builder{}.Build(spec)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("key %q should fail validation, got nil", k)
		}
	}
}

func TestBooleanAndNumericLiterals(t *testing.T) {
	built, err := Builder{}.Build(domain.QuerySpec{
		AccountID: "123",
		Filters: map[string]string{
			"delta":    "-0.25",
			"duration": "1.5",
			"ok":       "TRUE",
			"port":     "8080",
			"release":  "1-2-3",
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		"delta = -0.25",
		"duration = 1.5",
		"ok = true",
		"port = 8080",
		"release = '1-2-3'", // not a number, stays quoted
	} {
		if !strings.Contains(built.NRQL, want) {
			t.Fatalf("missing %q in %q", want, built.NRQL)
		}
	}
}

func TestFloatShapedJunkStaysQuoted(t *testing.T) {
	// ParseFloat-acceptable values that are not plain decimals must not be
	// emitted as bare literals
	for _, v := range []string{"Inf", "-Inf", "NaN", "+5", "0x1p-2", "1e3", "1.2.3", "-", "."} {
		built, err := Builder{}.Build(domain.QuerySpec{
			AccountID: "1",
			Filters:   map[string]string{"v": v},
		})
		if err != nil {
			t.Fatalf("Build(%q): %v", v, err)
		}
		if !strings.Contains(built.NRQL, "v = '"+v+"'") {
			t.Fatalf("value %q should stay quoted: %q", v, built.NRQL)
		}
	}
}

func TestLimitClamping(t *testing.T) {
	cases := []struct {
		limit       int
		wantLimit   string
		wantClamped bool
	}{
		{0, "LIMIT 100", false}, // default, not clamped
		{1, "LIMIT 1", false},
		{100, "LIMIT 100", false},
		{2000, "LIMIT 2000", false},
		{5000, "LIMIT 2000", true},
		{-3, "LIMIT 1", true},
	}
	for _, c := range cases {
		built, err := Builder{}.Build(domain.QuerySpec{AccountID: "1", Limit: c.limit})
		if err != nil {
			t.Fatalf("Build(limit=%d): %v", c.limit, err)
		}
		if !strings.HasSuffix(built.NRQL, c.wantLimit) {
			t.Fatalf("Build(limit=%d) = %q, want suffix %q", c.limit, built.NRQL, c.wantLimit)
		}
		if (built.LimitClamped != nil) != c.wantClamped {
			t.Fatalf("Build(limit=%d) clamped = %v, want %v", c.limit, built.LimitClamped, c.wantClamped)
		}
	}
}

func TestBuilderOverrides(t *testing.T) {
	b := Builder{DefaultSince: "30 minutes ago", DefaultLimit: 50, MaxLimit: 500}
	built, err := b.Build(domain.QuerySpec{AccountID: "1"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := "SELECT * FROM Log SINCE 30 minutes ago LIMIT 50"; built.NRQL != want {
		t.Fatalf("Build = %q, want %q", built.NRQL, want)
	}

	built, err = b.Build(domain.QuerySpec{AccountID: "1", Limit: 900})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasSuffix(built.NRQL, "LIMIT 500") {
		t.Fatalf("custom max not applied: %q", built.NRQL)
	}
	if built.LimitClamped == nil || *built.LimitClamped != 500 {
		t.Fatalf("clamped value not surfaced: %v", built.LimitClamped)
	}
}
