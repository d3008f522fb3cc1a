package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the browser-side carrier of the session token; API
// clients send it as a bearer header instead.
const SessionCookie = "watchlisty_session"

type ctxKeyIdentity struct{}

// Identity is the resolved caller attached to a request context by the
// middleware. Absence means the request is unauthenticated.
type Identity struct {
	UserID string
	Pseudo string
	Role   string
}

// Sessions issues and verifies HS256 session tokens. Verification is a pure
// read; nothing here mutates account state.
type Sessions struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewSessions(secret, issuer string, ttl time.Duration) *Sessions {
	return &Sessions{Secret: []byte(secret), Issuer: issuer, TTL: ttl}
}

func (s *Sessions) Issue(id Identity, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":    id.UserID,
		"pseudo": id.Pseudo,
		"role":   id.Role,
		"iss":    s.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(s.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *Sessions) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected method: %v", token.Header["alg"])
	}
	return s.Secret, nil
}

// Resolve parses a raw token into an Identity. Invalid or expired tokens
// resolve to "no identity", not an error the caller must branch on.
func (s *Sessions) Resolve(raw string) (Identity, bool) {
	parsed, err := jwt.Parse(raw, s.keyFunc, jwt.WithIssuer(s.Issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Identity{}, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, false
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, false
	}
	pseudo, _ := claims["pseudo"].(string)
	role, _ := claims["role"].(string)
	return Identity{UserID: sub, Pseudo: pseudo, Role: role}, true
}

func tokenFromRequest(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware rejects requests that carry no resolvable identity with 401 and
// attaches the identity to the context otherwise.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := tokenFromRequest(r)
		if tok == "" {
			unauthorized(w)
			return
		}
		id, ok := s.Resolve(tok)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches an identity when one resolves but lets anonymous
// requests through; handlers decide what anonymity means.
func (s *Sessions) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := tokenFromRequest(r); tok != "" {
			if id, ok := s.Resolve(tok); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"authentication required"}}`))
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

// FromContext returns the resolved caller, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity{}).(Identity)
	return id, ok
}
