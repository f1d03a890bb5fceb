package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// expiryBuffer refreshes access tokens slightly before they run out.
const expiryBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: tok.AccessToken,
		expiresAt:   expiresAt(tok.ExpiresIn),
	}
}

func expiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Me returns the session's user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Me(ctx, token)
}

// Refresh forces a new access token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Logout revokes the refresh cookie and forgets the access token.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) refreshLocked(ctx context.Context) error {
	tok, err := s.client.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tok.AccessToken
	s.expiresAt = expiresAt(tok.ExpiresIn)
	return nil
}
