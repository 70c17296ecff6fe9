package ports

import (
	"context"

	"github.com/switchserver/identity/internal/core/domain"
)

// PasswordHasher hashes and compares user secrets.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(claims domain.Claims) (string, error)
	Verify(token string) (*domain.Claims, error)
}

// PayloadValidator turns raw request bodies into normalized values or a
// *domain.ValidationError listing every violated field.
type PayloadValidator interface {
	PassengerRegistration(raw []byte) (*PassengerRegistration, error)
	DriverRegistration(raw []byte) (*DriverRegistration, error)
	Login(raw []byte) (*LoginInput, error)
	PassengerUpdate(raw []byte) (*domain.PassengerUpdate, error)
	DriverUpdate(raw []byte) (*domain.DriverUpdate, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// UserService is the identity surface consumed by the routing layer. Returned
// users never carry credential material.
type UserService interface {
	RegisterPassenger(ctx context.Context, payload []byte) (*domain.Passenger, error)
	RegisterDriver(ctx context.Context, payload []byte) (*domain.Driver, error)
	Login(ctx context.Context, payload []byte) (*LoginResult, error)
	GetProfile(ctx context.Context, id string) (domain.User, error)
	// UpdatePassenger and UpdateDriver trust that the caller already checked
	// the acting identity owns id.
	UpdatePassenger(ctx context.Context, id string, payload []byte) (*domain.Passenger, error)
	UpdateDriver(ctx context.Context, id string, payload []byte) (*domain.Driver, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}
