package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user-management-api/internal/config"
	"github.com/user-management-api/internal/model"
)

type contextKey string

const UserContextKey contextKey = "user"

// Claim names used by tokens minted with Microsoft identity libraries.
const (
	msRoleClaim = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	msNameClaim = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	msIDClaim   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
)

// clockSkew is the tolerance applied to exp and nbf.
const clockSkew = 5 * time.Minute

// AuthMiddleware validates HS256 bearer tokens. It never issues them.
type AuthMiddleware struct {
	jwtSecret []byte
	parser    *jwt.Parser
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cfg config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: []byte(cfg.Key),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if scheme, tokenStr, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
			claims, err := m.ValidateToken(strings.TrimSpace(tokenStr))
			if err == nil {
				ctx := context.WithValue(r.Context(), UserContextKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	})
}

// RequireAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsAdmin() {
			writeMessage(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateToken checks signature, issuer, audience and expiry and returns
// the caller identity.
func (m *AuthMiddleware) ValidateToken(tokenStr string) (*model.TokenClaims, error) {
	claims := jwt.MapClaims{}
	_, err := m.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	role := roleFrom(claims)

	sub, _ := claims.GetSubject()
	if sub == "" {
		sub = stringClaim(claims, msIDClaim)
	}
	name := stringClaim(claims, "name")
	if name == "" {
		name = stringClaim(claims, msNameClaim)
	}

	return &model.TokenClaims{
		Subject: sub,
		Name:    name,
		Role:    role,
	}, nil
}

// roleFrom reads the short role claim and falls back to the Microsoft URI.
// Either may be a single string or a list; a list containing Admin yields
// Admin. A token without either claim has an empty role.
func roleFrom(claims jwt.MapClaims) model.UserRole {
	for _, key := range []string{"role", msRoleClaim} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return model.UserRole(v)
			}
		case []interface{}:
			var first string
			for _, item := range v {
				s, ok := item.(string)
				if !ok || s == "" {
					continue
				}
				if model.UserRole(s) == model.UserRoleAdmin {
					return model.UserRoleAdmin
				}
				if first == "" {
					first = s
				}
			}
			if first != "" {
				return model.UserRole(first)
			}
		}
	}
	return ""
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// GetUserFromContext returns the claims stored by Authenticate, or nil.
func GetUserFromContext(ctx context.Context) *model.TokenClaims {
	claims, ok := ctx.Value(UserContextKey).(*model.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
