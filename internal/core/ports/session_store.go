package ports

import (
	"context"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

// SessionStore persists sessions. Find returns domain.ErrSessionNotFound for
// unknown ids.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Find(ctx context.Context, id string) (*domain.Session, error)
}
