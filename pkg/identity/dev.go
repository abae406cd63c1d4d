package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloudonauts/storefront/pkg/models"
)

type devAccount struct {
	sub       string
	name      string
	hash      []byte
	code      string
	confirmed bool
}

// DevProvider is an in-memory identity provider for local development.
// It follows the managed provider's shape: accounts start unconfirmed,
// confirmation codes go out-of-band (here, the log), and sign-in is
// refused until the account is confirmed.
type DevProvider struct {
	mu       sync.Mutex
	accounts map[string]*devAccount
}

func NewDevProvider() *DevProvider {
	return &DevProvider{accounts: make(map[string]*devAccount)}
}

func (p *DevProvider) SignUp(_ context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; ok {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &devAccount{
		sub:  uuid.NewString(),
		name: name,
		hash: hash,
		code: newConfirmationCode(),
	}
	p.accounts[email] = account

	// Stands in for the confirmation email.
	log.Printf("identity: confirmation code for %s is %s", email, account.code)
	return nil
}

func (p *DevProvider) ConfirmSignUp(_ context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[email]
	if !ok {
		return ErrUserNotFound
	}
	if account.code != strings.TrimSpace(code) {
		return ErrBadCode
	}
	account.confirmed = true
	return nil
}

func (p *DevProvider) ResendCode(_ context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[email]
	if !ok {
		return ErrUserNotFound
	}
	account.code = newConfirmationCode()
	log.Printf("identity: confirmation code for %s is %s", email, account.code)
	return nil
}

func (p *DevProvider) SignIn(_ context.Context, email, password string) (models.Profile, Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[email]
	if !ok {
		return models.Profile{}, Tokens{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.hash, []byte(password)); err != nil {
		return models.Profile{}, Tokens{}, ErrBadCredentials
	}
	if !account.confirmed {
		return models.Profile{}, Tokens{}, ErrNotConfirmed
	}

	profile := models.Profile{
		Sub:   account.sub,
		Email: email,
		Name:  account.name,
	}
	tokens := Tokens{
		IDToken:     uuid.NewString(),
		AccessToken: uuid.NewString(),
	}
	return profile, tokens, nil
}

// PendingCode reports the confirmation code currently on file for an
// email, so local tooling does not have to scrape the log.
func (p *DevProvider) PendingCode(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[email]
	if !ok {
		return "", false
	}
	return account.code, true
}

func newConfirmationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails when the platform's entropy source is
		// broken; a fixed code keeps dev signup usable regardless.
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
