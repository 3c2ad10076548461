package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrTokenNotFound         = errors.New("reset token not found or expired")
	ErrTokenAlreadyUsed      = errors.New("reset token has already been used")
	ErrFailedToGenerateToken = errors.New("failed to generate reset token")
)

const (
	ResetTokenTTL         = 10 * time.Minute
	resetTokenLengthBytes = 16
)

type resetTokenInfo struct {
	UserID    string
	ExpiresAt time.Time
	Used      bool
}

// ResetTokens hands out single-use password reset tokens.
type ResetTokens struct {
	tokens map[string]resetTokenInfo
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{
		tokens: make(map[string]resetTokenInfo),
		ttl:    ResetTokenTTL,
		now:    time.Now,
	}
}

func (s *ResetTokens) Issue(userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	bytes := make([]byte, resetTokenLengthBytes)
	if _, err := rand.Read(bytes); err != nil {
		logrus.Errorf("Failed to read random bytes for reset token: %v", err)
		return "", ErrFailedToGenerateToken
	}
	token := hex.EncodeToString(bytes)

	s.tokens[token] = resetTokenInfo{
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	logrus.Debugf("Issued reset token for user %s, expires at %v", userID, s.tokens[token].ExpiresAt)
	return token, nil
}

// Consume validates the token and marks it used, returning the user it was issued for.
func (s *ResetTokens) Consume(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.tokens[token]
	if !exists {
		logrus.Warn("Attempt to use an unknown reset token")
		return "", ErrTokenNotFound
	}

	if s.now().After(info.ExpiresAt) {
		logrus.Warnf("Attempt to use a reset token that expired at %v", info.ExpiresAt)
		delete(s.tokens, token)
		return "", ErrTokenNotFound
	}

	if info.Used {
		return "", ErrTokenAlreadyUsed
	}

	info.Used = true
	s.tokens[token] = info
	return info.UserID, nil
}

// sweep drops expired tokens. Used tokens are kept until expiry so a replay
// reports ErrTokenAlreadyUsed. Callers hold s.mu.
func (s *ResetTokens) sweep() {
	now := s.now()
	for token, info := range s.tokens {
		if now.After(info.ExpiresAt) {
			delete(s.tokens, token)
		}
	}
}
