// Package service provides the logs query service implementation
package service

import (
	"context"

	"github.com/pehrtree/mcp-server-newrelic/internal/platform/logger"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/bound"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/nrql"
)

// Config for the logs service
type Config struct {
	BudgetBytes  int
	DefaultSince string
	DefaultLimit int
	MaxLimit     int
}

// Service implements domain.QueryPort: validate -> build -> execute -> bound,
// one backend call per invocation, no retries, no shared state
type Service struct {
	Backend domain.ExecutorPort
	Builder nrql.Builder
	Bounder bound.Bounder
}

// New constructs a logs service with a required backend executor
func New(backend domain.ExecutorPort, cfg Config) *Service {
	return &Service{
		Backend: backend,
		Builder: nrql.Builder{
			DefaultSince: cfg.DefaultSince,
			DefaultLimit: cfg.DefaultLimit,
			MaxLimit:     cfg.MaxLimit,
		},
		Bounder: bound.New(cfg.BudgetBytes),
	}
}

// Query implements domain.QueryPort
func (s *Service) Query(ctx context.Context, spec domain.QuerySpec) (domain.BoundedResponse, error) {
	log := logger.C(ctx)

	built, err := s.Builder.Build(spec)
	if err != nil {
		return domain.BoundedResponse{}, err
	}
	log.Debug().Str("nrql", built.NRQL).Str("account_id", spec.AccountID).Msg("executing query")

	raw, err := s.Backend.QueryNRQL(ctx, spec.AccountID, built.NRQL)
	if err != nil {
		return domain.BoundedResponse{}, err
	}

	entries := make([]domain.LogEntry, len(raw.Records))
	for i, rec := range raw.Records {
		entries[i] = domain.EntryFromRecord(rec)
	}

	resp, err := s.Bounder.Bound(entries, raw.Total, built.NRQL, built.LimitClamped)
	if err != nil {
		return domain.BoundedResponse{}, err
	}

	log.Info().
		Int("total_results", resp.TotalResults).
		Int("returned_results", resp.ReturnedResults).
		Bool("truncated", resp.Truncated).
		Msg("query bounded")
	return resp, nil
}
