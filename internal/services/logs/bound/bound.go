// Package bound reduces a raw result set to fit a serialized-size budget.
//
// The bounder finds the largest prefix of log entries whose rendered payload
// fits the budget. Serialized size is non-decreasing in the prefix length
// (entries are only ever appended, never restructured), so a binary search
// converges in O(log n) serialization attempts instead of O(n)
package bound

import (
	"encoding/json"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
)

// DefaultBudgetBytes is the default cap on the rendered payload size
const DefaultBudgetBytes = 20000

// marshal is the payload renderer; a seam so tests can fail or observe it.
// Sizing must measure the exact bytes the tool returns, so Render and the
// search share this one function
var marshal = func(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Render serializes a response exactly as the tool surface emits it
func Render(resp domain.BoundedResponse) ([]byte, error) {
	b, err := marshal(resp)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "render response")
	}
	return b, nil
}

// Bounder bounds responses to a fixed byte budget
type Bounder struct {
	BudgetBytes int
}

// New returns a Bounder with the given budget, defaulting when non-positive
func New(budgetBytes int) Bounder {
	if budgetBytes <= 0 {
		budgetBytes = DefaultBudgetBytes
	}
	return Bounder{BudgetBytes: budgetBytes}
}

// Bound returns the largest-prefix response that fits the budget.
// entries is the full converted result set, total the backend-reported
// count, query the executed NRQL for provenance. Order is preserved;
// truncation only ever drops a contiguous suffix
func (b Bounder) Bound(
	entries []domain.LogEntry,
	total int,
	query string,
	limitClamped *int,
) (domain.BoundedResponse, error) {
	n := len(entries)
	if total < n {
		total = n
	}

	// empty result: nothing to search
	if n == 0 {
		return b.response(entries, 0, total, false, query, limitClamped), nil
	}

	fits, err := b.fits(entries, n, total, query, limitClamped)
	if err != nil {
		return domain.BoundedResponse{}, err
	}
	if fits {
		return b.response(entries, n, total, false, query, limitClamped), nil
	}

	// the envelope alone must fit, otherwise the budget is misconfigured
	fits, err = b.fits(entries, 0, total, query, limitClamped)
	if err != nil {
		return domain.BoundedResponse{}, err
	}
	if !fits {
		return domain.BoundedResponse{}, perr.Validationf(
			"size budget %d bytes too small for the response envelope", b.BudgetBytes)
	}

	// invariant: lo fits, hi does not
	lo, hi := 0, n
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		ok, err := b.fits(entries, mid, total, query, limitClamped)
		if err != nil {
			return domain.BoundedResponse{}, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	return b.response(entries, lo, total, true, query, limitClamped), nil
}

// fits reports whether the k-prefix response renders within the budget
func (b Bounder) fits(
	entries []domain.LogEntry,
	k, total int,
	query string,
	limitClamped *int,
) (bool, error) {
	truncated := k < len(entries)
	out, err := Render(b.response(entries, k, total, truncated, query, limitClamped))
	if err != nil {
		return false, err
	}
	return len(out) <= b.BudgetBytes, nil
}

func (b Bounder) response(
	entries []domain.LogEntry,
	k, total int,
	truncated bool,
	query string,
	limitClamped *int,
) domain.BoundedResponse {
	logs := entries[:k]
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	return domain.BoundedResponse{
		Logs:            logs,
		TotalResults:    total,
		ReturnedResults: k,
		Truncated:       truncated,
		QueryExecuted:   query,
		LimitClamped:    limitClamped,
	}
}
