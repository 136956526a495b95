// internal/common/auth/supabase.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseClaims are the claims of a Supabase access token that the API relies on.
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks advisor bearer tokens issued by Supabase Auth.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
	leeway   time.Duration
}

func NewVerifier(cfg config.SupabaseConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("supabase jwt secret is required")
	}

	v := &Verifier{
		secret:   []byte(cfg.JWTSecret),
		audience: cfg.Audience,
		leeway:   30 * time.Second,
	}
	if cfg.URL != "" {
		v.issuer = strings.TrimSuffix(cfg.URL, "/") + "/auth/v1"
	}
	return v, nil
}

// Verify validates signature, expiry, audience and issuer, and returns the advisor.
func (v *Verifier) Verify(tokenString string) (*models.Advisor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims SupabaseClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.NewAuthenticationError(err.Error())
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.NewAuthenticationError("token has no subject")
	}

	return &models.Advisor{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Sign issues a token for the given advisor. Used by tests and local tooling.
func (v *Verifier) Sign(advisor models.Advisor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SupabaseClaims{
		Email: advisor.Email,
		Role:  advisor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   advisor.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header value.
func ExtractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
