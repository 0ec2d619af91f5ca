// Package auth verifies the bearer tokens issued by the identity service and
// exposes the caller to handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindUnauthorized, "UNAUTHENTICATED", "missing or invalid bearer token")
	ErrForbidden       = apperr.New(apperr.KindForbidden, "FORBIDDEN", "admin access required")
)

type Claims struct {
	jwt.RegisteredClaims
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Email  string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

func (v *Verifier) Verify(token string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, ErrUnauthenticated.WithCause(err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrUnauthenticated.WithMessage("token subject is not a user id")
	}

	role := claims.Role
	if role == "" {
		role = RoleCustomer
	}

	return Principal{UserID: userID, Role: role, Email: claims.Email}, nil
}

// Issue signs a token for p. Tokens are normally issued by the identity
// service; operators use this for service accounts.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  p.Role,
		Email: p.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// MustFromContext returns the principal placed by Middleware.
func MustFromContext(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}

	return p, nil
}

var errNoToken = errors.New("no bearer token")
