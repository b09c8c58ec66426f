// Package repo adapts the NerdGraph client to the logs domain ports
package repo

import (
	"context"

	"github.com/pehrtree/mcp-server-newrelic/internal/platform/nerdgraph"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
)

// NerdGraph implements domain.ExecutorPort over a NerdGraph client
type NerdGraph struct {
	client *nerdgraph.Client
}

// New wraps a NerdGraph client
func New(client *nerdgraph.Client) *NerdGraph {
	return &NerdGraph{client: client}
}

// QueryNRQL implements domain.ExecutorPort
func (r *NerdGraph) QueryNRQL(ctx context.Context, accountID, nrql string) (domain.RawResult, error) {
	res, err := r.client.QueryNRQL(ctx, accountID, nrql)
	if err != nil {
		return domain.RawResult{}, err
	}
	records := make([]domain.Record, len(res.Results))
	for i, row := range res.Results {
		records[i] = domain.Record(row)
	}
	return domain.RawResult{Records: records, Total: res.Total}, nil
}
