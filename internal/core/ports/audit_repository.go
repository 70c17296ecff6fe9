package ports

import (
	"context"

	"github.com/switchserver/identity/internal/core/domain"
)

// AuditRepository persists audit events to durable storage.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// AuditPublisher accepts audit events for asynchronous persistence.
// Publish must not block the request path.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}
