// Package identity wraps the managed identity provider the storefront
// delegates authentication to. The provider is opaque to the rest of the
// application: it hands back a profile attribute set and bearer tokens,
// and nothing else about it leaks out.
package identity

import (
	"context"
	"errors"

	"github.com/cloudonauts/storefront/pkg/models"
)

var (
	ErrUserExists     = errors.New("identity: an account with this email already exists")
	ErrUserNotFound   = errors.New("identity: no account with this email")
	ErrNotConfirmed   = errors.New("identity: account is not confirmed")
	ErrBadCredentials = errors.New("identity: incorrect email or password")
	ErrBadCode        = errors.New("identity: invalid confirmation code")
)

// Tokens are the bearer tokens issued on sign-in. The id token rides on
// the user-tracking call; nothing in the client inspects either.
type Tokens struct {
	IDToken     string
	AccessToken string
}

// Provider is the delegated signup/login surface. Failures surface inline
// to the user and are never retried automatically.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string) (models.Profile, Tokens, error)
}
