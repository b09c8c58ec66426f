package module

import (
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/config"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/service"
)

// New constructs the logs service from env configuration and a backend executor
func New(cfg config.Conf, backend domain.ExecutorPort) *service.Service {
	opts := FromConfig(cfg)
	return service.New(backend, service.Config{
		BudgetBytes:  opts.BudgetBytes,
		DefaultSince: opts.DefaultSince,
		DefaultLimit: opts.DefaultLimit,
		MaxLimit:     opts.MaxLimit,
	})
}
