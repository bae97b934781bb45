package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	apperrors "github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/errors"
)

type contextKey string

const claimsKey contextKey = constants.ContextKeyClaims

// Middleware rejects requests without a valid ingest token.
type Middleware struct {
	tokens *TokenService
}

// NewMiddleware creates a middleware validating against tokens.
func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireToken validates the bearer token and stores its claims in the
// request context.
func (m *Middleware) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			apperrors.WriteError(w, r, apperrors.NewUnauthorizedError(apperrors.CodeMissingToken,
				"Missing or invalid authorization header").Wrap(err))
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			apperrors.WriteError(w, r, apperrors.NewUnauthorizedError(apperrors.CodeInvalidToken,
				"Invalid or expired token").Wrap(err))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// extractToken extracts the token from the Authorization header
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], constants.AuthSchemeBearer) {
		return "", fmt.Errorf("authorization header must be in '%s <token>' format", constants.AuthSchemeBearer)
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	return token, nil
}

// GetClaims returns the claims stored by RequireToken.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
