package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/appsec-lab/gateway/internal/api/metrics"
	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

const (
	// UserIDHeader is read by the header resolver.
	UserIDHeader = "X-User-Id"
	// SessionCookie carries the session id issued by /login.
	SessionCookie = "sid"
)

// AuthError is returned by resolvers. It unwraps to domain.ErrUnauthenticated.
type AuthError struct {
	Mode   string
	Reason string
}

func (e *AuthError) Error() string {
	return "unauthenticated (" + e.Mode + "): " + e.Reason
}

func (e *AuthError) Unwrap() error { return domain.ErrUnauthenticated }

// Resolver maps a request to the identity making it.
type Resolver interface {
	Mode() string
	Resolve(c echo.Context) (*domain.User, error)
}

type identityKey struct{}

// SetIdentity stores user in the request context.
func SetIdentity(c echo.Context, user *domain.User) {
	ctx := context.WithValue(c.Request().Context(), identityKey{}, user)
	c.SetRequest(c.Request().WithContext(ctx))
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(identityKey{}).(*domain.User)
	return u, ok && u != nil
}

// Authenticate resolves the caller with r and rejects the request with 401
// when no identity can be established.
func Authenticate(r Resolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := r.Resolve(c)
			if err != nil {
				reason := "error"
				var ae *AuthError
				if errors.As(err, &ae) {
					reason = ae.Reason
				}
				metrics.AuthFailuresTotal.WithLabelValues(r.Mode(), reason).Inc()
				log.Debug().
					Str("mode", r.Mode()).
					Str("reason", reason).
					Str("path", c.Request().URL.Path).
					Msg("request not authenticated")
				return err
			}

			SetIdentity(c, user)
			return next(c)
		}
	}
}

func lookupUser(ctx context.Context, dir ports.Directory, mode string, id int) (*domain.User, error) {
	user, err := dir.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &AuthError{Mode: mode, Reason: "unknown_user"}
		}
		return nil, err
	}
	return user, nil
}

// HeaderResolver trusts the client-supplied X-User-Id header.
//
// Anyone can send any id, so this is an insecure teaching baseline and must
// never protect real data.
type HeaderResolver struct {
	Directory ports.Directory
}

func (HeaderResolver) Mode() string { return "header" }

func (h HeaderResolver) Resolve(c echo.Context) (*domain.User, error) {
	raw := c.Request().Header.Get(UserIDHeader)
	if raw == "" {
		return nil, &AuthError{Mode: h.Mode(), Reason: "missing"}
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, &AuthError{Mode: h.Mode(), Reason: "malformed"}
	}
	return lookupUser(c.Request().Context(), h.Directory, h.Mode(), id)
}

// SessionResolver reads the sid cookie and looks it up in the session store.
type SessionResolver struct {
	Sessions  ports.SessionStore
	Directory ports.Directory
}

func (SessionResolver) Mode() string { return "session" }

func (s SessionResolver) Resolve(c echo.Context) (*domain.User, error) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, &AuthError{Mode: s.Mode(), Reason: "missing"}
	}

	ctx := c.Request().Context()
	sess, err := s.Sessions.Find(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, &AuthError{Mode: s.Mode(), Reason: "unknown_session"}
		}
		return nil, err
	}
	return lookupUser(ctx, s.Directory, s.Mode(), sess.UserID)
}

// TokenVerifier validates a bearer token and returns its user id.
type TokenVerifier interface {
	Verify(raw string) (int, error)
}

// TokenResolver reads "Authorization: Bearer <token>".
type TokenResolver struct {
	Verifier  TokenVerifier
	Directory ports.Directory
}

func (TokenResolver) Mode() string { return "token" }

func (t TokenResolver) Resolve(c echo.Context) (*domain.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, &AuthError{Mode: t.Mode(), Reason: "missing"}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, &AuthError{Mode: t.Mode(), Reason: "malformed"}
	}

	id, err := t.Verifier.Verify(parts[1])
	if err != nil {
		return nil, &AuthError{Mode: t.Mode(), Reason: "invalid_token"}
	}
	return lookupUser(c.Request().Context(), t.Directory, t.Mode(), id)
}
