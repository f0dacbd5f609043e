// Package session signs back office users in and checks their tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/inkacorp/solicitudes/internal/metrics"
)

var (
	// ErrNoSession means the caller is not signed in or the token expired.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidCredentials is returned by SignIn for a bad email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the signed-in principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the result of a successful sign in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Authenticator is the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	User(ctx context.Context, token string) (User, error)
}

// Event is a session state change.
type Event int

const (
	SignedIn Event = iota + 1
	SignedOut
)

func (e Event) String() string {
	switch e {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Listener receives session changes. u is the zero User on SignedOut when the
// token could not be resolved.
type Listener func(e Event, u User)

// Claims are the fields read from a Supabase access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Gate guards the back office.
type Gate struct {
	auth   Authenticator
	secret []byte

	mu        sync.RWMutex
	listeners []Listener
}

// NewGate wraps auth. When jwtSecret is set tokens are verified locally,
// otherwise every Verify asks the provider.
func NewGate(auth Authenticator, jwtSecret string) *Gate {
	g := &Gate{auth: auth}
	if jwtSecret != "" {
		g.secret = []byte(jwtSecret)
	}
	return g
}

// OnChange registers l for every later sign in and sign out.
func (g *Gate) OnChange(l Listener) {
	g.mu.Lock()
	g.listeners = append(g.listeners, l)
	g.mu.Unlock()
}

func (g *Gate) notify(e Event, u User) {
	g.mu.RLock()
	listeners := append([]Listener(nil), g.listeners...)
	g.mu.RUnlock()
	for _, l := range listeners {
		l(e, u)
	}
}

// SignIn authenticates with email and password.
func (g *Gate) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.IncAuth("rejected")
		return Session{}, ErrInvalidCredentials
	}

	s, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		metrics.IncAuth("rejected")
		log.Warn().Err(err).Str("email", email).Msg("sign in rejected")
		return Session{}, err
	}

	metrics.IncAuth("signed_in")
	log.Info().Str("user", s.User.ID).Msg("signed in")
	g.notify(SignedIn, s.User)
	return s, nil
}

// SignOut ends the session behind token. Listeners are notified even when
// the provider call fails, the local session is gone either way.
func (g *Gate) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}
	u, _ := g.Verify(ctx, token)
	err := g.auth.SignOut(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("sign out failed on the provider")
	}

	metrics.IncAuth("signed_out")
	g.notify(SignedOut, u)
	return err
}

// Verify resolves token to its user. Missing, malformed or expired tokens
// yield an error wrapping ErrNoSession.
func (g *Gate) Verify(ctx context.Context, token string) (User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return User{}, ErrNoSession
	}

	if g.secret == nil {
		u, err := g.auth.User(ctx, token)
		if err != nil {
			metrics.IncAuth("rejected")
			return User{}, err
		}
		return u, nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		metrics.IncAuth("rejected")
		return User{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.Subject == "" {
		metrics.IncAuth("rejected")
		return User{}, fmt.Errorf("%w: token has no subject", ErrNoSession)
	}
	return User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
