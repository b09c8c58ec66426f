package bound

import (
	"fmt"
	"strings"
	"testing"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	kit "github.com/pehrtree/mcp-server-newrelic/internal/platform/testkit"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
)

func entries(n int) []domain.LogEntry {
	xs := make([]domain.LogEntry, n)
	for i := range xs {
		ts := fmt.Sprintf("2026-08-24T10:%02d:00Z", i%60)
		xs[i] = domain.LogEntry{
			Timestamp:  &ts,
			Message:    fmt.Sprintf("request %04d failed with status 502", i),
			Level:      "ERROR",
			Attributes: map[string]any{"host": fmt.Sprintf("web-%d", i%7)},
		}
	}
	return xs
}

// renderedSize is the exact payload size for a k-prefix response
func renderedSize(t *testing.T, xs []domain.LogEntry, k, total int, truncated bool, query string) int {
	t.Helper()
	out, err := Render(domain.BoundedResponse{
		Logs:            xs[:k],
		TotalResults:    total,
		ReturnedResults: k,
		Truncated:       truncated,
		QueryExecuted:   query,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return len(out)
}

func TestEmptyResultSkipsSearch(t *testing.T) {
	resp, err := New(1).Bound(nil, 0, "SELECT * FROM Log", nil)
	if err != nil {
		t.Fatalf("Bound: %v", err)
	}
	if resp.Truncated || resp.ReturnedResults != 0 || resp.TotalResults != 0 {
		t.Fatalf("empty result mishandled: %+v", resp)
	}
	if resp.Logs == nil {
		t.Fatalf("logs must serialize as [], not null")
	}
}

func TestEverythingFits(t *testing.T) {
	xs := entries(3)
	resp, err := New(DefaultBudgetBytes).Bound(xs, 3, "q", nil)
	if err != nil {
		t.Fatalf("Bound: %v", err)
	}
	if resp.Truncated {
		t.Fatalf("should not truncate: %+v", resp)
	}
	if resp.ReturnedResults != 3 || resp.TotalResults != 3 {
		t.Fatalf("counts wrong: %+v", resp)
	}
	out, err := Render(resp)
	kit.MustNoErr(t, err)
	if len(out) > DefaultBudgetBytes {
		t.Fatalf("rendered size %d over budget", len(out))
	}
}

func TestTruncationIsMaximal(t *testing.T) {
	xs := entries(500)
	query := "SELECT * FROM Log SINCE 1 hour ago LIMIT 500"

	// pick a budget that admits exactly 137 records
	budget := renderedSize(t, xs, 137, 500, true, query)
	b := New(budget)

	resp, err := b.Bound(xs, 500, query, nil)
	if err != nil {
		t.Fatalf("Bound: %v", err)
	}
	if !resp.Truncated {
		t.Fatalf("expected truncation")
	}
	if resp.ReturnedResults != 137 {
		t.Fatalf("ReturnedResults = %d, want 137", resp.ReturnedResults)
	}
	if resp.TotalResults != 500 {
		t.Fatalf("TotalResults = %d, want 500", resp.TotalResults)
	}

	// k fits, k+1 exceeds: proves maximality, not mere feasibility
	if got := renderedSize(t, xs, 137, 500, true, query); got > budget {
		t.Fatalf("k=137 renders %d > budget %d", got, budget)
	}
	if got := renderedSize(t, xs, 138, 500, true, query); got <= budget {
		t.Fatalf("k=138 renders %d <= budget %d, not maximal", got, budget)
	}

	// order preserved: truncation drops a contiguous suffix
	for i, e := range resp.Logs {
		if e.Message != xs[i].Message {
			t.Fatalf("record %d reordered", i)
		}
	}
}

func TestIdempotentAndMonotoneInBudget(t *testing.T) {
	xs := entries(60)
	budget := renderedSize(t, xs, 25, 60, true, "q")

	first, err := New(budget).Bound(xs, 60, "q", nil)
	kit.MustNoErr(t, err)
	second, err := New(budget).Bound(xs, 60, "q", nil)
	kit.MustNoErr(t, err)
	if first.ReturnedResults != second.ReturnedResults {
		t.Fatalf("not deterministic: %d vs %d", first.ReturnedResults, second.ReturnedResults)
	}

	prev := -1
	for _, extra := range []int{0, 50, 500, 5000, 50000} {
		resp, err := New(budget + extra).Bound(xs, 60, "q", nil)
		kit.MustNoErr(t, err)
		if resp.ReturnedResults < prev {
			t.Fatalf("increasing budget decreased returned results: %d -> %d", prev, resp.ReturnedResults)
		}
		if resp.ReturnedResults > len(xs) {
			t.Fatalf("returned more than available: %d", resp.ReturnedResults)
		}
		prev = resp.ReturnedResults
	}
}

func TestEnvelopeTooLargeIsDistinctError(t *testing.T) {
	xs := entries(5)
	_, err := New(10).Bound(xs, 5, "SELECT * FROM Log", nil)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error for impossible budget, got %v", err)
	}
	kit.MustContain(t, err.Error(), "budget")
}

func TestZeroRecordsCanStillFit(t *testing.T) {
	xs := entries(50)
	// budget admits the bare envelope but not a single record
	budget := renderedSize(t, xs, 0, 50, true, "q")
	resp, err := New(budget).Bound(xs, 50, "q", nil)
	kit.MustNoErr(t, err)
	if resp.ReturnedResults != 0 || !resp.Truncated {
		t.Fatalf("expected truncated empty prefix, got %+v", resp)
	}
}

func TestLimitClampedCarriedThrough(t *testing.T) {
	clamped := 2000
	resp, err := New(0).Bound(entries(2), 2, "q", &clamped)
	kit.MustNoErr(t, err)
	if resp.LimitClamped == nil || *resp.LimitClamped != 2000 {
		t.Fatalf("limit_clamped lost: %+v", resp.LimitClamped)
	}
	out, err := Render(resp)
	kit.MustNoErr(t, err)
	kit.MustContain(t, string(out), `"limit_clamped": 2000`)
}

func TestRenderErrorSurfaces(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &marshal, func(any) ([]byte, error) {
		return nil, fmt.Errorf("boom")
	})
	_, err := New(100).Bound(entries(2), 2, "q", nil)
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want json error, got %v", err)
	}
}

func TestRenderShape(t *testing.T) {
	resp, err := New(0).Bound(nil, 0, "SELECT * FROM Log", nil)
	kit.MustNoErr(t, err)
	out, err := Render(resp)
	kit.MustNoErr(t, err)
	for _, want := range []string{
		`"logs": []`,
		`"total_results": 0`,
		`"returned_results": 0`,
		`"truncated": false`,
		`"query_executed": "SELECT * FROM Log"`,
	} {
		kit.MustContain(t, string(out), want)
	}
	if strings.Contains(string(out), "limit_clamped") {
		t.Fatalf("limit_clamped should be omitted when nil")
	}
}
