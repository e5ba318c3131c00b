package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

var (
	_ ports.OTPStore     = (*OTPStore)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// OTPStore is an in-memory OTPStore implementation.
type OTPStore struct {
	challenges sync.Map
}

func NewOTPStore() *OTPStore {
	return &OTPStore{}
}

func (s *OTPStore) Save(_ context.Context, challenge domain.OTPChallenge) error {
	s.challenges.Store(challenge.DealerID, challenge)
	return nil
}

func (s *OTPStore) Get(_ context.Context, dealerID string) (*domain.OTPChallenge, error) {
	value, ok := s.challenges.Load(dealerID)
	if !ok {
		return nil, nil
	}
	challenge := value.(domain.OTPChallenge)
	return &challenge, nil
}

func (s *OTPStore) Delete(_ context.Context, dealerID string) error {
	s.challenges.Delete(dealerID)
	return nil
}

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Resolve(_ context.Context, token string) (*domain.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(domain.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

// PurgeExpired drops sessions past their TTL and reports how many were removed.
func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if value.(domain.Session).Expired(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
