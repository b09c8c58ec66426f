// Package domain defines the types and interfaces for the accounts service
package domain

// Account is one New Relic account visible to the credential
type Account struct {
	ID   string
	Name string
}
