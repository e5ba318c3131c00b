package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dealertypes "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

const (
	// DefaultOTPTTL bounds how long a one-time password can be redeemed.
	DefaultOTPTTL = 5 * time.Minute
	// DefaultSessionTTL is the lifetime of a bearer session.
	DefaultSessionTTL = 24 * time.Hour

	otpDigits  = 6
	tokenBytes = 32
)

// Service implements dealer registration, OTP login, and the bearer auth gate.
type Service struct {
	repo       ports.Repository
	otps       ports.OTPStore
	sessions   ports.SessionStore
	sender     ports.OTPSender
	now        func() time.Time
	otpTTL     time.Duration
	sessionTTL time.Duration
	hashCost   int
	newCode    func() (string, error)
	newToken   func() (string, error)
}

// Option customises the service.
type Option func(*Service)

// WithOTPSender routes one-time passwords to a delivery channel.
func WithOTPSender(sender ports.OTPSender) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithOTPTTL overrides DefaultOTPTTL.
func WithOTPTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost used for OTP hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

// NewService wires the dealers service with its stores.
func NewService(repo ports.Repository, otps ports.OTPStore, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		otps:       otps,
		sessions:   sessions,
		sender:     ports.LogOTPSender{},
		now:        time.Now,
		otpTTL:     DefaultOTPTTL,
		sessionTTL: DefaultSessionTTL,
		hashCost:   bcrypt.DefaultCost,
		newCode:    generateOTP,
		newToken:   generateToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a dealer with the default credit line.
func (s *Service) Register(ctx context.Context, input dealertypes.RegisterInput) (*domain.Dealer, error) {
	dealer, err := domain.NewDealer(uuid.NewString(), input.Name, input.Phone, input.Email, input.BusinessName, input.Address, input.GSTNumber)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	dealer.CreatedAt = now
	dealer.UpdatedAt = now
	saved, err := s.repo.Create(ctx, dealer)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// SendOTP issues a fresh code for a registered phone, replacing any pending one.
func (s *Service) SendOTP(ctx context.Context, phone string) (*dealertypes.OTPDispatch, error) {
	dealer, err := s.lookupPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}
	now := s.now().UTC()
	challenge := domain.OTPChallenge{
		DealerID:  dealer.ID,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.otps.Save(ctx, challenge); err != nil {
		return nil, err
	}
	if err := s.sender.Send(ctx, dealer.Phone, code); err != nil {
		return nil, fmt.Errorf("deliver otp: %w", err)
	}
	return &dealertypes.OTPDispatch{Phone: dealer.Phone, Code: code, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOTP redeems a code and opens a bearer session.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*dealertypes.AuthResult, error) {
	dealer, err := s.lookupPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	challenge, err := s.otps.Get(ctx, dealer.ID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if challenge == nil || challenge.Expired(now) {
		return nil, ErrInvalidOTP
	}
	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		return nil, ErrInvalidOTP
	}
	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	session := domain.Session{
		Token:     token,
		DealerID:  dealer.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if err := s.otps.Delete(ctx, dealer.ID); err != nil {
		return nil, err
	}
	return &dealertypes.AuthResult{Token: token, ExpiresAt: session.ExpiresAt, Dealer: dealer}, nil
}

// Authenticate resolves a bearer token to exactly one dealer.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Dealer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	dealer, err := s.repo.GetByID(ctx, session.DealerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return dealer, nil
}

// Logout ends the session bound to token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// GetDealer loads a dealer profile with its current credit figures.
func (s *Service) GetDealer(ctx context.Context, id string) (*domain.Dealer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) lookupPhone(ctx context.Context, phone string) (*domain.Dealer, error) {
	normalized := domain.NormalizePhone(phone)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidPhone)
	}
	return s.repo.GetByPhone(ctx, normalized)
}

func generateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var _ ports.Service = (*Service)(nil)
