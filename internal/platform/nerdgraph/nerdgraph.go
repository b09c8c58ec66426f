// Package nerdgraph provides a client for New Relic's NerdGraph GraphQL API.
//
// One authenticated POST per call, no retries, no pagination. Failures map
// onto the platform error taxonomy so callers can surface them unchanged
package nerdgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/platform/logger"
)

const (
	// DefaultEndpoint is New Relic's public NerdGraph endpoint
	DefaultEndpoint = "https://api.newrelic.com/graphql"

	// DefaultTimeout matches the backend-documented execution ceiling
	DefaultTimeout = 30 * time.Second

	// keyPrefix identifies a New Relic User API key
	keyPrefix = "NRAK"
)

// Config configures the client
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Client is a thin NerdGraph HTTP client
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

// NRQLResult is the raw outcome of one NRQL execution: the ordered result
// rows plus the backend-reported total (which may exceed len(Results))
type NRQLResult struct {
	Results []map[string]any
	Total   int
}

// Account is one account visible to the configured credential
type Account struct {
	ID   int
	Name string
}

// New validates the credential shape and returns a client.
// A key without the NRAK prefix is not a User API key and fails fast
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, perr.WithField(perr.Unauthorizedf("API key is required"), "api_key")
	}
	if !strings.HasPrefix(cfg.APIKey, keyPrefix) {
		return nil, perr.WithField(
			perr.Unauthorizedf("API key must be a User API key (prefix %q)", keyPrefix), "api_key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.Named("nerdgraph"),
	}, nil
}

// QueryNRQL executes one NRQL query against the given account.
// The query is embedded into the GraphQL document with string escaping;
// the account id must be numeric since it lands in an Int position
func (c *Client) QueryNRQL(ctx context.Context, accountID, nrql string) (NRQLResult, error) {
	if !isDigits(accountID) {
		return NRQLResult{}, perr.WithField(
			perr.Validationf("account_id must be numeric, got %q", accountID), "account_id")
	}

	doc := `{
  actor {
    account(id: ` + accountID + `) {
      nrql(query: "` + escapeGraphQLString(nrql) + `") {
        results
        totalResult
        metadata { eventTypes facets messages }
      }
    }
  }
}`

	body, err := c.post(ctx, doc, nrql)
	if err != nil {
		return NRQLResult{}, err
	}

	var payload struct {
		Data struct {
			Actor struct {
				Account struct {
					NRQL struct {
						Results     []map[string]any `json:"results"`
						TotalResult map[string]any   `json:"totalResult"`
					} `json:"nrql"`
				} `json:"account"`
			} `json:"actor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return NRQLResult{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode nrql response")
	}

	nr := payload.Data.Actor.Account.NRQL
	total := len(nr.Results)
	if count, ok := nr.TotalResult["count"].(float64); ok {
		total = int(count)
	}
	return NRQLResult{Results: nr.Results, Total: total}, nil
}

// ListAccounts returns every account visible to the credential
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	doc := `{
  actor {
    accounts {
      id
      name
    }
  }
}`

	body, err := c.post(ctx, doc, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			Actor struct {
				Accounts []struct {
					ID   int    `json:"id"`
					Name string `json:"name"`
				} `json:"accounts"`
			} `json:"actor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode accounts response")
	}

	accounts := make([]Account, len(payload.Data.Actor.Accounts))
	for i, a := range payload.Data.Actor.Accounts {
		accounts[i] = Account{ID: a.ID, Name: a.Name}
	}
	return accounts, nil
}

// post sends one GraphQL document and returns the response body after HTTP
// and GraphQL-level error mapping. nrql, when set, is included in backend
// query rejections to aid debugging
func (c *Client) post(ctx context.Context, document, nrql string) ([]byte, error) {
	reqBody, err := json.Marshal(map[string]string{"query": document})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, perr.Timeoutf("backend call exceeded %s", c.cfg.Timeout)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "backend call failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "read response body")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, perr.Unauthorizedf("backend rejected the API key (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, perr.RateLimitedf("rate limit exceeded; wait before retrying")
	case resp.StatusCode != http.StatusOK:
		return nil, perr.Newf(perr.ErrorCodeUnknown, "unexpected backend status %d", resp.StatusCode)
	}

	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode graphql envelope")
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		if nrql != "" {
			return nil, perr.BackendQueryf("graphql errors: %s (query: %s)", strings.Join(msgs, "; "), nrql)
		}
		return nil, perr.BackendQueryf("graphql errors: %s", strings.Join(msgs, "; "))
	}
	return body, nil
}

// escapeGraphQLString escapes for embedding inside a double-quoted GraphQL
// string literal
func escapeGraphQLString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isTimeout classifies transport errors that are really deadline expiries
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
