package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

const sessionTokenPrefix = "pnl_sess_"

func GenerateSessionToken() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return sessionTokenPrefix + hex.EncodeToString(raw), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func VerifyToken(rawToken, expectedHash string) bool {
	actual := HashToken(rawToken)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedHash)) == 1
}

func BearerToken(authHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	if token == "" {
		return ""
	}
	return token
}

// Sessions tracks live session tokens by hash. The mock API issues a
// token on login and resolves it back to a user id on every protected
// request.
type Sessions struct {
	mu     sync.Mutex
	byHash map[string]string
}

func NewSessions() *Sessions {
	return &Sessions{byHash: map[string]string{}}
}

// Issue creates a session for userID and returns the raw token.
func (s *Sessions) Issue(userID string) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.byHash[HashToken(token)] = userID
	s.mu.Unlock()
	return token, nil
}

// Resolve returns the user id behind a raw token, or false when the
// token is unknown.
func (s *Sessions) Resolve(rawToken string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.byHash[HashToken(rawToken)]
	return userID, ok
}

// Revoke drops a session. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(rawToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byHash, HashToken(rawToken))
}
