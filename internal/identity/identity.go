// Package identity is a thin facade over the hosted authentication
// provider. Failures are surfaced verbatim to the caller; nothing here
// retries.
package identity

import (
	"context"
	"errors"
)

// Error taxonomy for credential operations. Anything else is an unknown
// provider failure and is wrapped, not classified.
var (
	ErrEmailInUse         = errors.New("email is already in use")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthorized")
)

// Identity is the opaque user record the provider hands back.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	// IDToken is only set by SignIn; subsequent requests present it as a
	// bearer credential.
	IDToken string `json:"idToken,omitempty"`
}

// Provider is the identity boundary: current-user lookup, sign-in,
// sign-up, sign-out, and display-name update.
type Provider interface {
	CurrentUser(ctx context.Context, idToken string) (*Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, uid string) error
	UpdateDisplayName(ctx context.Context, uid, name string) error
}
