package domain

import "context"

// LookupPort resolves an account name to its id
type LookupPort interface {
	AccountID(ctx context.Context, name string) (string, error)
}

// ListerPort lists the accounts visible to the credential
type ListerPort interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}
