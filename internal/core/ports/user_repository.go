package ports

import (
	"context"

	"github.com/switchserver/identity/internal/core/domain"
)

// UserRepository is one role partition of the identity store.
//
// Lookups return domain.ErrNotFound when no record matches. Insert returns
// domain.ErrDuplicateEmail when the partition already holds the email, which
// makes the uniqueness check atomic at the store. Any other failure wraps
// domain.ErrStore.
type UserRepository interface {
	Role() domain.Role
	FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error)
	FindByID(ctx context.Context, id string) (*domain.UserRecord, error)
	// Insert persists rec and returns the store-generated id.
	Insert(ctx context.Context, rec *domain.UserRecord) (string, error)
	// Update merges patch into the stored record and returns the result.
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.UserRecord, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*domain.UserRecord, error)
}

// RegistrationGuard serialises registrations of the same email within a
// partition. Acquire reports false when another registration holds the key.
type RegistrationGuard interface {
	Acquire(ctx context.Context, role domain.Role, email string) (bool, error)
	Release(ctx context.Context, role domain.Role, email string) error
}
