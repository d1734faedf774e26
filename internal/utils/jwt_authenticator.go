package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// AuthenticatedUser is the identity extracted from a validated session token.
type AuthenticatedUser struct {
	Sub       string   `json:"sub"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	CompanyID string   `json:"company_id"`
	Aud       []string `json:"aud"`
}

type sessionClaims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// JwtAuthenticator validates bearer tokens. It signs and verifies HS256
// session tokens with a shared secret; when a JWKS URL is configured,
// verification goes through the key set instead so tokens minted by an
// external identity provider are accepted too.
type JwtAuthenticator struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	jwksURL  string
	jwkCache *jwk.Cache
}

type JwtAuthenticatorOption func(*JwtAuthenticator)

func WithJWKS(ctx context.Context, jwksURL string) JwtAuthenticatorOption {
	return func(a *JwtAuthenticator) {
		cache := jwk.NewCache(ctx)
		if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			return
		}
		a.jwksURL = jwksURL
		a.jwkCache = cache
	}
}

func NewJwtAuthenticator(secret, issuer string, ttl time.Duration, opts ...JwtAuthenticatorOption) *JwtAuthenticator {
	a := &JwtAuthenticator{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IssueToken mints a session token for a contractor.
func (a *JwtAuthenticator) IssueToken(sub, email, name, companyID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:     email,
		Name:      name,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken verifies a bearer token and returns the authenticated user.
func (a *JwtAuthenticator) ValidateToken(tokenString string) (*AuthenticatedUser, error) {
	if a.jwkCache != nil {
		return a.validateWithJWKS(tokenString)
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}

	return &AuthenticatedUser{
		Sub:       claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		CompanyID: claims.CompanyID,
		Aud:       claims.Audience,
	}, nil
}

func (a *JwtAuthenticator) validateWithJWKS(tokenString string) (*AuthenticatedUser, error) {
	ctx := context.Background()
	keySet, err := a.jwkCache.Get(ctx, a.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	if _, err := jws.Verify([]byte(tokenString), jws.WithKeySet(keySet)); err != nil {
		return nil, fmt.Errorf("invalid token signature: %w", err)
	}

	// Signature is valid; parse claims without re-verifying.
	var claims sessionClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}

	return &AuthenticatedUser{
		Sub:       claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		CompanyID: claims.CompanyID,
		Aud:       claims.Audience,
	}, nil
}
