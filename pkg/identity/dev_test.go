package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpConfirmSignIn(t *testing.T) {
	p := NewDevProvider()
	ctx := context.Background()

	require.NoError(t, p.SignUp(ctx, "jo@example.com", "hunter2secret", "Jo"))

	// Unconfirmed accounts cannot sign in yet.
	_, _, err := p.SignIn(ctx, "jo@example.com", "hunter2secret")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	code := p.accounts["jo@example.com"].code
	require.NoError(t, p.ConfirmSignUp(ctx, "jo@example.com", code))

	profile, tokens, err := p.SignIn(ctx, "jo@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", profile.Email)
	assert.Equal(t, "Jo", profile.Name)
	assert.NotEmpty(t, profile.Sub)
	assert.NotEmpty(t, tokens.IDToken)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	p := NewDevProvider()
	ctx := context.Background()

	require.NoError(t, p.SignUp(ctx, "jo@example.com", "hunter2secret", "Jo"))
	assert.ErrorIs(t, p.SignUp(ctx, "JO@example.com", "otherpassword", "Jo"), ErrUserExists)
}

func TestConfirmWithWrongCode(t *testing.T) {
	p := NewDevProvider()
	ctx := context.Background()

	require.NoError(t, p.SignUp(ctx, "jo@example.com", "hunter2secret", "Jo"))
	assert.ErrorIs(t, p.ConfirmSignUp(ctx, "jo@example.com", "999999x"), ErrBadCode)
	assert.ErrorIs(t, p.ConfirmSignUp(ctx, "nobody@example.com", "000000"), ErrUserNotFound)
}

func TestResendCodeReplacesCode(t *testing.T) {
	p := NewDevProvider()
	ctx := context.Background()

	require.NoError(t, p.SignUp(ctx, "jo@example.com", "hunter2secret", "Jo"))
	require.NoError(t, p.ResendCode(ctx, "jo@example.com"))

	fresh := p.accounts["jo@example.com"].code
	require.NoError(t, p.ConfirmSignUp(ctx, "jo@example.com", fresh))

	assert.ErrorIs(t, p.ResendCode(ctx, "nobody@example.com"), ErrUserNotFound)
}

func TestSignInWrongPassword(t *testing.T) {
	p := NewDevProvider()
	ctx := context.Background()

	require.NoError(t, p.SignUp(ctx, "jo@example.com", "hunter2secret", "Jo"))
	_, _, err := p.SignIn(ctx, "jo@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = p.SignIn(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
