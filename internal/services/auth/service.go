package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

// Session represents an authenticated session
type Session struct {
	Token     string
	Handle    model.Handle
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration, login and session management
type Service struct {
	storage storage.Store
	clock   clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	bcryptCost      int
	initialWallet   int
	adminHandles    map[model.Handle]bool
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	BcryptCost      int
	InitialWallet   int
	AdminHandles    []string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
		InitialWallet:   100,
	}
}

// New creates a new auth Service
func New(storage storage.Store, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	admins := make(map[model.Handle]bool, len(cfg.AdminHandles))
	for _, h := range cfg.AdminHandles {
		admins[model.Handle(h)] = true
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
		initialWallet:   cfg.InitialWallet,
		adminHandles:    admins,
	}
}

// Register creates a new identity and logs it in
func (s *Service) Register(ctx context.Context, handle model.Handle, password string) (*Session, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.clock.Now()
	identity := &model.Identity{
		Handle:       handle,
		PasswordHash: string(hash),
		Wallet:       s.initialWallet,
		Cosmetics:    []string{},
		Admin:        s.adminHandles[handle],
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}

	return s.createSession(handle), nil
}

// Login authenticates an identity and creates a session
func (s *Service) Login(ctx context.Context, handle model.Handle, password string) (*Session, error) {
	identity, err := s.storage.GetIdentity(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.createSession(handle), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrNotAuthenticated
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, model.ErrNotAuthenticated
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetIdentity returns the current identity for a handle
func (s *Service) GetIdentity(ctx context.Context, handle model.Handle) (*model.Identity, error) {
	return s.storage.GetIdentity(ctx, handle)
}

// createSession creates a new session for a handle
func (s *Service) createSession(handle model.Handle) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     uuid.NewString(),
		Handle:    handle,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func validateHandle(handle model.Handle) error {
	if len(handle) < 3 || len(handle) > 24 {
		return fmt.Errorf("%w: handle must be 3-24 characters", model.ErrInvalidInput)
	}
	for _, r := range handle {
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isUpper && !isDigit && r != '_' {
			return fmt.Errorf("%w: handle may only contain letters, digits and underscores", model.ErrInvalidInput)
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", model.ErrInvalidInput)
	}
	if len(password) > 128 {
		return fmt.Errorf("%w: password too long", model.ErrInvalidInput)
	}
	return nil
}
