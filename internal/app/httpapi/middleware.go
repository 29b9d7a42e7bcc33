package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator guards routes that mutate offers or enumerate claims. A
// request passes with either a static bearer token or an HS256 JWT signed
// with the shared secret.
type Authenticator struct {
	tokens    map[string]struct{}
	jwtSecret []byte
}

// NewAuthenticator builds an authenticator from static tokens and an optional
// JWT secret. With neither configured, protected routes reject everything.
func NewAuthenticator(tokens []string, jwtSecret []byte) *Authenticator {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return &Authenticator{tokens: set, jwtSecret: jwtSecret}
}

// Require wraps a handler with bearer authentication.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.authorize(r); err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next(w, r)
	}
}

func (a *Authenticator) authorize(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if header == "" {
		return errors.New("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return errors.New("authorization header must be a bearer token")
	}
	token = strings.TrimSpace(token)

	if _, found := a.tokens[token]; found {
		return nil
	}
	if len(a.jwtSecret) > 0 {
		if err := a.verifyJWT(token); err == nil {
			return nil
		}
	}
	return errors.New("invalid token")
}

func (a *Authenticator) verifyJWT(tokenString string) error {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
