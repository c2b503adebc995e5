// Package auth issues and checks the bearer tokens that tie a browser
// page to the window it renders.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/mattjoyce/webshell/internal/tag"
)

// TokenQueryParam carries the token for clients that cannot set headers,
// such as EventSource.
const TokenQueryParam = "token"

// Tokens maps window labels to bearer tokens.
type Tokens struct {
	mu      sync.RWMutex
	byLabel map[tag.Label]string
}

func NewTokens() *Tokens {
	return &Tokens{byLabel: make(map[tag.Label]string)}
}

// Issue creates a fresh token for label, replacing any previous one.
func (t *Tokens) Issue(label tag.Label) (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b[:])
	t.mu.Lock()
	t.byLabel[label] = token
	t.mu.Unlock()
	return token, nil
}

// Revoke forgets label's token.
func (t *Tokens) Revoke(label tag.Label) {
	t.mu.Lock()
	delete(t.byLabel, label)
	t.mu.Unlock()
}

// Token returns the current token for label.
func (t *Tokens) Token(label tag.Label) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tok, ok := t.byLabel[label]
	return tok, ok
}

// Verify reports whether presented is label's token.
func (t *Tokens) Verify(label tag.Label, presented string) bool {
	want, ok := t.Token(label)
	if !ok {
		return false
	}
	return constantTimeEqual(presented, want)
}

func ExtractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing Authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", errors.New("invalid Authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	if token == "" {
		return "", errors.New("missing token")
	}
	return token, nil
}

// TokenFromRequest reads the bearer header, falling back to the token
// query parameter.
func TokenFromRequest(r *http.Request) (string, error) {
	if r.Header.Get("Authorization") != "" {
		return ExtractBearerToken(r)
	}
	if tok := strings.TrimSpace(r.URL.Query().Get(TokenQueryParam)); tok != "" {
		return tok, nil
	}
	return "", errors.New("missing Authorization header")
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
