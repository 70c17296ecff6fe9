// Package memory is an in-process identity store partition. State lives in
// the UserStore value; nothing is shared between instances.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// UserStore holds one role partition. The email index is updated under the
// same lock as the records, so Insert checks and claims an email atomically.
type UserStore struct {
	role domain.Role

	mu      sync.RWMutex
	byID    map[string]*domain.UserRecord
	byEmail map[string]string
	order   []string
}

var _ ports.UserRepository = (*UserStore)(nil)

func NewUserStore(role domain.Role) *UserStore {
	return &UserStore{
		role:    role,
		byID:    make(map[string]*domain.UserRecord),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Role() domain.Role { return s.role }

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(s.byID[id]), nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *UserStore) Insert(ctx context.Context, rec *domain.UserRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	if rec == nil || rec.User.Role() != s.role {
		return "", fmt.Errorf("%w: record does not belong to %s partition", domain.ErrStore, s.role)
	}

	stored := cloneRecord(rec)
	email := stored.User.Email()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return "", domain.ErrDuplicateEmail
	}

	id := uuid.NewString()
	if err := stored.Reassert(s.role, id); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.byID[id] = stored
	s.byEmail[email] = id
	s.order = append(s.order, id)
	return id, nil
}

func (s *UserStore) Update(ctx context.Context, id string, patch domain.Patch) (*domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	if patch.Role() != s.role {
		return nil, fmt.Errorf("%w: %s patch applied to %s partition", domain.ErrStore, patch.Role(), s.role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := cloneRecord(rec)
	patch.Apply(updated.User)
	s.byID[id] = updated
	return cloneRecord(updated), nil
}

func (s *UserStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byEmail, rec.User.Email())
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// List returns records in insertion order.
func (s *UserStore) List(ctx context.Context) ([]*domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.UserRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRecord(s.byID[id]))
	}
	return out, nil
}

func cloneRecord(rec *domain.UserRecord) *domain.UserRecord {
	if rec == nil {
		return nil
	}
	return &domain.UserRecord{User: rec.User.Clone(), PasswordHash: rec.PasswordHash}
}
