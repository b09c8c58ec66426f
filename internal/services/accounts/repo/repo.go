// Package repo adapts the NerdGraph client to the accounts domain ports
package repo

import (
	"context"
	"strconv"

	"github.com/pehrtree/mcp-server-newrelic/internal/platform/nerdgraph"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/accounts/domain"
)

// NerdGraph implements domain.ListerPort over a NerdGraph client
type NerdGraph struct {
	client *nerdgraph.Client
}

// New wraps a NerdGraph client
func New(client *nerdgraph.Client) *NerdGraph {
	return &NerdGraph{client: client}
}

// ListAccounts implements domain.ListerPort
func (r *NerdGraph) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := r.client.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		out[i] = domain.Account{ID: strconv.Itoa(a.ID), Name: a.Name}
	}
	return out, nil
}
