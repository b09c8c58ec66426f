// Package module wires the logs service from configuration
package module

import (
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/config"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/bound"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/nrql"
)

// Options holds configuration settings for the logs module
type Options struct {
	BudgetBytes  int
	DefaultSince string
	DefaultLimit int
	MaxLimit     int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	lf := cfg.Prefix("CORE_LOGS_")
	return Options{
		BudgetBytes:  lf.MayInt("BUDGET_BYTES", bound.DefaultBudgetBytes),
		DefaultSince: lf.MayString("DEFAULT_SINCE", nrql.DefaultSince),
		DefaultLimit: lf.MayInt("DEFAULT_LIMIT", nrql.DefaultLimit),
		MaxLimit:     lf.MayInt("MAX_LIMIT", nrql.MaxLimit),
	}
}
