package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

const registrationLockTTL = 30 * time.Second

// RegistrationLock serialises sign-ups of the same email within a role.
// Key format: register:<role>:<email>, with the email kept as given since
// uniqueness is case-sensitive.
// The TTL bounds how long a crashed request can hold the key.
type RegistrationLock struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.RegistrationGuard = (*RegistrationLock)(nil)

// NewRegistrationLock creates a RegistrationLock wrapping the given Redis client.
func NewRegistrationLock(client *redis.Client) *RegistrationLock {
	return &RegistrationLock{client: client, ttl: registrationLockTTL}
}

// Acquire reports whether this caller now holds the key.
func (l *RegistrationLock) Acquire(ctx context.Context, role domain.Role, email string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(role, email), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("registration lock: %w", err)
	}
	return ok, nil
}

func (l *RegistrationLock) Release(ctx context.Context, role domain.Role, email string) error {
	if err := l.client.Del(ctx, lockKey(role, email)).Err(); err != nil {
		return fmt.Errorf("registration unlock: %w", err)
	}
	return nil
}

func lockKey(role domain.Role, email string) string {
	return fmt.Sprintf("register:%s:%s", role, email)
}
