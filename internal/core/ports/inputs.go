package ports

import (
	"time"

	"github.com/switchserver/identity/internal/core/domain"
)

// PassengerRegistration is a validated passenger sign-up payload.
// Nil pointers mark optional fields the client did not send.
type PassengerRegistration struct {
	Email                  string
	Password               string
	FirstName              string
	LastName               string
	Username               string
	Gender                 *domain.Gender
	PhoneNumber            string
	DateOfBirth            *time.Time
	ProfilePicture         string
	PreferredPaymentMethod domain.PaymentMethod
	EmergencyContact       *domain.EmergencyContact
}

// DriverRegistration is a validated driver sign-up payload.
type DriverRegistration struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	PhoneNumber       string
	DateOfBirth       *time.Time
	ProfilePicture    string
	LicenseNumber     string
	LicenseExpiryDate time.Time
	VehicleDetails    domain.VehicleDetails
	BankDetails       *domain.BankDetails
	Documents         domain.Documents
}

// LoginInput is a validated login payload. Role is informational only.
type LoginInput struct {
	Email    string
	Password string
	Role     domain.Role
}
