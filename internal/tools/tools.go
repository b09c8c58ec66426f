package tools

import (
	"context"
	"encoding/json"
	"fmt"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/logger"
	acctdomain "github.com/pehrtree/mcp-server-newrelic/internal/services/accounts/domain"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/logs/bound"
	logdomain "github.com/pehrtree/mcp-server-newrelic/internal/services/logs/domain"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options carries the service ports the tools dispatch into
type Options struct {
	Logs     logdomain.QueryPort
	Accounts acctdomain.LookupPort
}

// Register adds the query_logs and get_account_id tools to the MCP server
func Register(s *server.MCPServer, opts Options) {
	s.AddTool(queryLogsTool(), queryLogsHandler(opts.Logs))
	s.AddTool(getAccountIDTool(), getAccountIDHandler(opts.Accounts))
}

// queryLogsArgs is the wire shape of the query_logs arguments
type queryLogsArgs struct {
	AccountID     string            `json:"account_id"     validate:"required,numeric"`
	Query         string            `json:"query"`
	MessageSearch string            `json:"message_search"`
	Filters       map[string]string `json:"filters"`
	Since         string            `json:"since"`
	Limit         int               `json:"limit"`
}

// getAccountIDArgs is the wire shape of the get_account_id arguments
type getAccountIDArgs struct {
	AccountName string `json:"account_name" validate:"required"`
}

func queryLogsTool() mcp.Tool {
	return mcp.NewTool("query_logs",
		mcp.WithDescription("Query New Relic logs using NRQL or simple filters"),
		mcp.WithString("account_id",
			mcp.Required(),
			mcp.Description("New Relic account ID"),
		),
		mcp.WithString("query",
			mcp.Description("Full NRQL query (overrides other parameters)"),
		),
		mcp.WithString("message_search",
			mcp.Description("Search text in message field"),
		),
		mcp.WithObject("filters",
			mcp.Description("Key-value pairs for filtering"),
			mcp.AdditionalProperties(map[string]any{"type": "string"}),
		),
		mcp.WithString("since",
			mcp.Description("Time range (e.g., '1 hour ago')"),
			mcp.DefaultString("1 hour ago"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results"),
			mcp.DefaultNumber(100),
			mcp.Min(1),
			mcp.Max(2000),
		),
	)
}

func getAccountIDTool() mcp.Tool {
	return mcp.NewTool("get_account_id",
		mcp.WithDescription("Look up New Relic account ID by name"),
		mcp.WithString("account_name",
			mcp.Required(),
			mcp.Description("Name of the New Relic account"),
		),
	)
}

func queryLogsHandler(logs logdomain.QueryPort) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logger.WithInvocation(ctx, uuid.NewString(), "query_logs")
		log := logger.C(ctx)

		var args queryLogsArgs
		if err := bindArguments(req.GetArguments(), &args); err != nil {
			return failResult(log, err), nil
		}

		resp, err := logs.Query(ctx, logdomain.QuerySpec{
			AccountID:     args.AccountID,
			RawQuery:      args.Query,
			MessageSearch: args.MessageSearch,
			Filters:       args.Filters,
			Since:         args.Since,
			Limit:         args.Limit,
		})
		if err != nil {
			return failResult(log, err), nil
		}

		out, err := bound.Render(resp)
		if err != nil {
			return failResult(log, err), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func getAccountIDHandler(accounts acctdomain.LookupPort) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logger.WithInvocation(ctx, uuid.NewString(), "get_account_id")
		log := logger.C(ctx)

		var args getAccountIDArgs
		if err := bindArguments(req.GetArguments(), &args); err != nil {
			return failResult(log, err), nil
		}

		id, err := accounts.AccountID(ctx, args.AccountName)
		if err != nil {
			return failResult(log, err), nil
		}
		return mcp.NewToolResultText(
			fmt.Sprintf("Account ID for '%s': %s", args.AccountName, id)), nil
	}
}

// failResult logs the failure and converts it into a structured tool error.
// The caller sees the wire form (code, message, optional field), never a
// stack trace; nothing is swallowed
func failResult(log *logger.Logger, err error) *mcp.CallToolResult {
	wire := perr.WireFrom(err)
	log.Error().Err(err).Str("code", wire.Code).Str("field", wire.Field).Msg("tool call failed")

	out, merr := json.Marshal(wire)
	if merr != nil {
		return mcp.NewToolResultError(wire.Message)
	}
	return mcp.NewToolResultError(string(out))
}
