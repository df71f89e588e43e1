package domain

import "context"

// CredentialStore persists the single credential of the signed-in account.
type CredentialStore interface {
	Save(ctx context.Context, cred Credential) error

	// Get returns nil without an error when nothing is stored.
	Get(ctx context.Context) (*Credential, error)

	Clear(ctx context.Context) error
}
