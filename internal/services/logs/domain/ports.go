package domain

import "context"

// QueryPort runs one validated, bounded log query end to end
type QueryPort interface {
	Query(ctx context.Context, spec QuerySpec) (BoundedResponse, error)
}

// ExecutorPort issues a single NRQL execution against the backend.
// Implementations never retry; failures surface as coded errors
type ExecutorPort interface {
	QueryNRQL(ctx context.Context, accountID, nrql string) (RawResult, error)
}
