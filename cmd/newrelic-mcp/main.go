// newrelic-mcp is an MCP server exposing New Relic log querying to agents.
//
// Tools: query_logs (structured intent or raw NRQL, size-bounded response)
// and get_account_id (account name to id). Transport is stdio by default;
// set MCP_TRANSPORT=http for the streamable HTTP transport.
package main

import (
	"context"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/pehrtree/mcp-server-newrelic/internal/platform/config"
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/logger"
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/nerdgraph"
	phttp "github.com/pehrtree/mcp-server-newrelic/internal/platform/net/http"
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/net/middleware"
	"github.com/pehrtree/mcp-server-newrelic/internal/version"

	acctrepo "github.com/pehrtree/mcp-server-newrelic/internal/services/accounts/repo"
	acctservice "github.com/pehrtree/mcp-server-newrelic/internal/services/accounts/service"
	logsmodule "github.com/pehrtree/mcp-server-newrelic/internal/services/logs/module"
	logsrepo "github.com/pehrtree/mcp-server-newrelic/internal/services/logs/repo"
	"github.com/pehrtree/mcp-server-newrelic/internal/tools"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	root := config.New()
	l := logger.Get()

	// credential is validated up front so a bad key fails before the first
	// tool call, not during it
	nrCfg := root.Prefix("NEWRELIC_")
	client, err := nerdgraph.New(nerdgraph.Config{
		APIKey:   nrCfg.MustString("API_KEY"),
		Endpoint: nrCfg.MayString("API_ENDPOINT", nerdgraph.DefaultEndpoint),
		Timeout:  nrCfg.MayDuration("TIMEOUT", nerdgraph.DefaultTimeout),
	})
	if err != nil {
		l.Fatal().Err(err).Msg("nerdgraph client init failed")
	}

	logsSvc := logsmodule.New(root, logsrepo.New(client))
	acctSvc := acctservice.New(acctrepo.New(client))

	info := version.Info()
	srv := mcpserver.NewMCPServer(
		info.Service,
		info.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	tools.Register(srv, tools.Options{Logs: logsSvc, Accounts: acctSvc})

	mcpCfg := root.Prefix("MCP_")
	switch transport := mcpCfg.MayString("TRANSPORT", "stdio"); transport {
	case "stdio":
		l.Info().Str("transport", "stdio").Str("version", info.Version).Msg("mcp server ready")
		if err := mcpserver.ServeStdio(srv); err != nil {
			l.Fatal().Err(err).Msg("stdio server stopped")
		}
	case "http":
		runHTTP(mcpCfg, srv)
	default:
		l.Fatal().Str("transport", transport).Msg("unknown MCP_TRANSPORT (want stdio or http)")
	}
}

// runHTTP serves the streamable HTTP transport behind the platform chi
// server with request-id, recovery, CORS, and a /healthz probe
func runHTTP(cfg config.Conf, srv *mcpserver.MCPServer) {
	l := logger.Get()

	streamable := mcpserver.NewStreamableHTTPServer(srv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	origins := strings.Split(cfg.MayString("HTTP_CORS_ORIGINS", "*"), ",")
	web := phttp.NewServer(cfg, func(m *chi.Mux) {
		m.Use(middleware.Defaults()...)
		m.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins}))
		// the /mcp endpoint holds long-lived streams, so only the probe
		// gets a request deadline
		m.With(middleware.Timeout(5 * time.Second)).
			Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
				w.WriteHeader(stdhttp.StatusOK)
				_, _ = w.Write([]byte("ok"))
			})
		m.Handle("/mcp", streamable)
	})

	l.Info().Str("transport", "http").Str("addr", web.Addr()).Msg("mcp server ready")
	if err := web.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("http server stopped")
	}
}
