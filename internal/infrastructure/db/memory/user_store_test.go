package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/switchserver/identity/internal/core/domain"
)

func newPassengerRecord(email string) *domain.UserRecord {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &domain.UserRecord{
		User: domain.PassengerUser(&domain.Passenger{
			Account:   domain.Account{Email: email, Role: domain.RolePassenger, CreatedAt: now, UpdatedAt: now},
			FirstName: "John",
			LastName:  "Doe",
			Username:  "jd",
			IsActive:  true,
		}),
		PasswordHash: "hash",
	}
}

func TestUserStore_InsertAndFind(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()

	id, err := s.Insert(ctx, newPassengerRecord("a@b.com"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	byEmail, err := s.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.User.ID() != id || byEmail.PasswordHash != "hash" {
		t.Fatalf("unexpected record: %+v", byEmail)
	}

	byID, err := s.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.User.Email() != "a@b.com" {
		t.Fatalf("unexpected email: %s", byID.User.Email())
	}

	if _, err := s.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()

	if _, err := s.Insert(ctx, newPassengerRecord("a@b.com")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Insert(ctx, newPassengerRecord("a@b.com")); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	all, _ := s.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
}

func TestUserStore_ConcurrentInsertKeepsOne(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Insert(ctx, newPassengerRecord("race@b.com")); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", success)
	}
}

func TestUserStore_RejectsOtherRole(t *testing.T) {
	s := NewUserStore(domain.RoleDriver)

	if _, err := s.Insert(context.Background(), newPassengerRecord("a@b.com")); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestUserStore_Update(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()
	id, _ := s.Insert(ctx, newPassengerRecord("a@b.com"))

	name := "Jane"
	stamp := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	rec, err := s.Update(ctx, id, &domain.PassengerUpdate{FirstName: &name, UpdatedAt: stamp})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	p := rec.User.Passenger
	if p.FirstName != "Jane" || p.LastName != "Doe" {
		t.Fatalf("expected merge, got %+v", p)
	}
	if !p.UpdatedAt.Equal(stamp) {
		t.Fatalf("expected updatedAt refresh, got %v", p.UpdatedAt)
	}
	if p.ID != id || p.Email != "a@b.com" || rec.PasswordHash != "hash" {
		t.Fatalf("identity fields must not change: %+v", rec)
	}

	if _, err := s.Update(ctx, "missing", &domain.PassengerUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, id, &domain.DriverUpdate{}); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore for foreign patch, got %v", err)
	}
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()
	id, _ := s.Insert(ctx, newPassengerRecord("a@b.com"))

	rec, _ := s.FindByID(ctx, id)
	rec.User.Passenger.FirstName = "Mutated"

	again, _ := s.FindByID(ctx, id)
	if again.User.Passenger.FirstName != "John" {
		t.Fatalf("store state leaked through returned record")
	}
}

func TestUserStore_Delete(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx := context.Background()
	id, _ := s.Insert(ctx, newPassengerRecord("a@b.com"))

	deleted, err := s.Delete(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = s.Delete(ctx, id)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}

	if _, err := s.Insert(ctx, newPassengerRecord("a@b.com")); err != nil {
		t.Fatalf("email should be free after delete: %v", err)
	}
}

func TestUserStore_CancelledContext(t *testing.T) {
	s := NewUserStore(domain.RolePassenger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.FindByEmail(ctx, "a@b.com"); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
