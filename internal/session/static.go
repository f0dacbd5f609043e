package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StaticAuth signs in a fixed set of users and issues its own tokens. It
// stands in for the identity provider in demo and offline runs.
type StaticAuth struct {
	secret []byte
	users  map[string]string
	ttl    time.Duration
	now    func() time.Time
}

// NewStaticAuth accepts the email/password pairs in users. Tokens are signed
// with secret, so a Gate built with the same secret verifies them locally.
func NewStaticAuth(secret string, users map[string]string) *StaticAuth {
	normalized := make(map[string]string, len(users))
	for email, password := range users {
		normalized[strings.ToLower(strings.TrimSpace(email))] = password
	}
	return &StaticAuth{
		secret: []byte(secret),
		users:  normalized,
		ttl:    time.Hour,
		now:    time.Now,
	}
}

// UserID is the stable identifier given to email.
func UserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

func (a *StaticAuth) SignIn(_ context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	want, ok := a.users[email]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return Session{}, ErrInvalidCredentials
	}

	now := a.now()
	user := User{ID: UserID(email), Email: email, Role: "authenticated"}
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Session{AccessToken: token, ExpiresAt: now.Add(a.ttl), User: user}, nil
}

// SignOut is a no-op; issued tokens stay valid until they expire.
func (a *StaticAuth) SignOut(context.Context, string) error { return nil }

func (a *StaticAuth) User(_ context.Context, token string) (User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
