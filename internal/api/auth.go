package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthMiddleware requires an HS256 bearer token signed with secret on every
// route except health and metrics
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthPath || r.URL.Path == MetricsPath {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context())

			authHeader := r.Header.Get(AuthorizationHeader)
			if authHeader == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("Authorization header missing")
				writeError(w, http.StatusUnauthorized, ErrAuthHeaderRequired, "")
				return
			}

			if !strings.HasPrefix(authHeader, BearerPrefix) {
				logger.Warn().Str("path", r.URL.Path).Msg("Invalid authorization header format")
				writeError(w, http.StatusUnauthorized, ErrInvalidAuthHeader, "")
				return
			}

			claims, err := ValidateToken(secret, strings.TrimPrefix(authHeader, BearerPrefix))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg(LogJWTValidationFailed)
				writeError(w, http.StatusUnauthorized, ErrInvalidToken, "")
				return
			}

			ctx := context.WithValue(r.Context(), StaffKey, claims)
			l := logger.With().Str("staff", claims.Subject).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
		})
	}
}

// ValidateToken verifies signature, algorithm and expiry
func ValidateToken(secret []byte, tokenString string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// IssueToken signs a staff token valid for ttl
func IssueToken(secret []byte, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		Name:              name,
		PreferredUsername: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// StaffFromContext returns the authenticated staff member, if any
func StaffFromContext(ctx context.Context) (*StaffClaims, bool) {
	claims, ok := ctx.Value(StaffKey).(*StaffClaims)
	return claims, ok
}
