package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

// AuthService implements credential login backed by the record store and a
// session store.
type AuthService struct {
	accounts  ports.AccountRepository
	directory ports.Directory
	sessions  ports.SessionStore
	tokens    *TokenIssuer
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthService wires the login flow. tokens may be nil, in which case no
// bearer token is issued.
func NewAuthService(
	accounts ports.AccountRepository,
	directory ports.Directory,
	sessions ports.SessionStore,
	tokens *TokenIssuer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		directory: directory,
		sessions:  sessions,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

// Login checks username and password and opens a session.
//
// Unknown usernames fail with domain.ErrAccountNotFound, wrong passwords with
// domain.ErrInvalidCredentials. No session is stored in either case.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.log.Info().Int("user_id", account.ID).Msg("login rejected: wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.directory.FindUser(ctx, account.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: account %d has no directory entry: %w", account.ID, domain.ErrStore)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("login: session id: %w", err)
	}

	session := &domain.Session{
		ID:        id.String(),
		UserID:    user.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	result := &ports.LoginResult{Session: session, User: user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user)
		if err != nil {
			return nil, fmt.Errorf("login: issue token: %w", err)
		}
		result.Token = token
	}

	s.log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("login succeeded")
	return result, nil
}
