// Package service provides the accounts lookup service implementation
package service

import (
	"context"
	"strings"

	perr "github.com/pehrtree/mcp-server-newrelic/internal/platform/errors"
	"github.com/pehrtree/mcp-server-newrelic/internal/services/accounts/domain"

	"golang.org/x/text/cases"
)

// Service implements domain.LookupPort against a ListerPort
type Service struct {
	Lister domain.ListerPort
}

// New constructs an accounts service with a required lister
func New(lister domain.ListerPort) *Service {
	return &Service{Lister: lister}
}

// AccountID implements domain.LookupPort. Names match case-insensitively
// under Unicode case folding; a miss lists the available names to help the
// caller correct its input
func (s *Service) AccountID(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", perr.WithField(perr.Validationf("account_name is required"), "account_name")
	}

	accounts, err := s.Lister.ListAccounts(ctx)
	if err != nil {
		return "", err
	}

	fold := cases.Fold()
	want := fold.String(name)
	names := make([]string, len(accounts))
	for i, a := range accounts {
		if fold.String(a.Name) == want {
			return a.ID, nil
		}
		names[i] = a.Name
	}
	return "", perr.NotFoundf("account %q not found; available accounts: %s",
		name, strings.Join(names, ", "))
}
