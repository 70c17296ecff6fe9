package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// AuditLog is the audit sink used when no database is configured. Events are
// written to the logger and kept in memory for inspection.
type AuditLog struct {
	log zerolog.Logger

	mu     sync.Mutex
	events []domain.AuditEvent
}

var _ ports.AuditRepository = (*AuditLog)(nil)

func NewAuditLog(log zerolog.Logger) *AuditLog {
	return &AuditLog{log: log}
}

func (a *AuditLog) InsertEvent(_ context.Context, event *domain.AuditEvent) error {
	a.mu.Lock()
	a.events = append(a.events, *event)
	a.mu.Unlock()

	a.log.Info().
		Str("user_id", event.UserID).
		Str("role", string(event.Role)).
		Str("action", string(event.Action)).
		Strs("fields", event.Fields).
		Time("at", event.Timestamp).
		Msg("audit event")
	return nil
}

// Events returns a copy of everything recorded so far.
func (a *AuditLog) Events() []domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}
