package security

import (
	"errors"
	"fmt"
	"sync"

	"github.com/litetable/litetable-scan/internal/data"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrBadCredentials is returned when a principal is unknown or its password does not match.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrPermissionDenied is returned when a principal asks for authorizations it does not hold.
	ErrPermissionDenied = errors.New("permission denied")
)

// User is a principal known to the authenticator.
type User struct {
	Principal      string   `yaml:"principal"`
	PasswordHash   string   `yaml:"password_hash"`
	Authorizations []string `yaml:"authorizations"`
}

// Authenticator verifies credentials against bcrypt password hashes.
type Authenticator struct {
	mu    sync.RWMutex
	users map[string]User
}

type Config struct {
	Users []User
}

func (c *Config) validate() error {
	var errGrp []error
	seen := make(map[string]struct{}, len(c.Users))
	for _, u := range c.Users {
		if u.Principal == "" {
			errGrp = append(errGrp, errors.New("user principal is required"))
			continue
		}
		if _, dup := seen[u.Principal]; dup {
			errGrp = append(errGrp, fmt.Errorf("user %q defined twice", u.Principal))
		}
		seen[u.Principal] = struct{}{}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			errGrp = append(errGrp, fmt.Errorf("user %q: invalid password hash: %w", u.Principal, err))
		}
	}
	return errors.Join(errGrp...)
}

// NewAuthenticator returns an authenticator for the configured users.
func NewAuthenticator(cfg *Config) (*Authenticator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	users := make(map[string]User, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Principal] = u
	}
	return &Authenticator{users: users}, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies the credentials and returns the authorizations the user holds.
func (a *Authenticator) Authenticate(creds Credentials) (data.Authorizations, error) {
	a.mu.RLock()
	user, ok := a.users[creds.Principal]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), creds.Token); err != nil {
		return nil, ErrBadCredentials
	}
	return data.NewAuthorizations(user.Authorizations...), nil
}

// Authorize authenticates the credentials and checks that requested is a subset of what the
// user holds. It returns the authorizations the scan should run with: the requested set, or all
// of the user's authorizations when none were requested.
func (a *Authenticator) Authorize(creds Credentials, requested data.Authorizations) (data.Authorizations, error) {
	held, err := a.Authenticate(creds)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return held, nil
	}
	if !requested.SubsetOf(held) {
		return nil, fmt.Errorf("%w: %s may not scan with %v", ErrPermissionDenied, creds.Principal,
			requested)
	}
	return requested, nil
}
