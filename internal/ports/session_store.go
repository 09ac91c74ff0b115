package ports

import (
	"context"

	"github.com/bnema/qrchat-cli/internal/domain"
)

// SessionStore persists the local identity across restarts. Absent or
// unreadable state loads as the empty session.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
