package domain

import "time"

// Patch is a partial update for one partition. Fields lists only the values
// the caller provided, keyed by stored field name; Apply merges the same
// values into an in-memory user. The two must always agree.
type Patch interface {
	Role() Role
	Fields() map[string]any
	Apply(u User)
}

// PassengerUpdate carries the optional fields a passenger may change.
// Email, role and credential are deliberately absent.
type PassengerUpdate struct {
	FirstName              *string
	LastName               *string
	Username               *string
	Gender                 *Gender
	PhoneNumber            *string
	DateOfBirth            *time.Time
	ProfilePicture         *string
	PreferredPaymentMethod *PaymentMethod
	EmergencyContact       *EmergencyContact

	// UpdatedAt is stamped by the service on every update.
	UpdatedAt time.Time
}

func (PassengerUpdate) Role() Role { return RolePassenger }

func (p PassengerUpdate) Fields() map[string]any {
	f := map[string]any{"updatedAt": p.UpdatedAt}
	setIf(f, "firstName", p.FirstName)
	setIf(f, "lastName", p.LastName)
	setIf(f, "username", p.Username)
	setIf(f, "gender", p.Gender)
	setIf(f, "phoneNumber", p.PhoneNumber)
	setIf(f, "dateOfBirth", p.DateOfBirth)
	setIf(f, "profilePicture", p.ProfilePicture)
	setIf(f, "preferredPaymentMethod", p.PreferredPaymentMethod)
	setIf(f, "emergencyContact", p.EmergencyContact)
	return f
}

func (p PassengerUpdate) Apply(u User) {
	t := u.Passenger
	if t == nil {
		return
	}
	assign(&t.FirstName, p.FirstName)
	assign(&t.LastName, p.LastName)
	assign(&t.Username, p.Username)
	if p.Gender != nil {
		g := *p.Gender
		t.Gender = &g
	}
	assign(&t.PhoneNumber, p.PhoneNumber)
	if p.DateOfBirth != nil {
		t.DateOfBirth = cloneTime(p.DateOfBirth)
	}
	assign(&t.ProfilePicture, p.ProfilePicture)
	assign(&t.PreferredPaymentMethod, p.PreferredPaymentMethod)
	assign(&t.EmergencyContact, p.EmergencyContact)
	t.UpdatedAt = p.UpdatedAt
}

// DriverUpdate carries the optional fields a driver may change. Nested blocks
// replace the stored block wholesale. Counters (rating, totalRides) and
// availability flags are not client-editable.
type DriverUpdate struct {
	FirstName         *string
	LastName          *string
	PhoneNumber       *string
	DateOfBirth       *time.Time
	ProfilePicture    *string
	LicenseNumber     *string
	LicenseExpiryDate *time.Time
	VehicleDetails    *VehicleDetails
	BankDetails       *BankDetails
	Documents         *Documents

	UpdatedAt time.Time
}

func (DriverUpdate) Role() Role { return RoleDriver }

func (d DriverUpdate) Fields() map[string]any {
	f := map[string]any{"updatedAt": d.UpdatedAt}
	setIf(f, "firstName", d.FirstName)
	setIf(f, "lastName", d.LastName)
	setIf(f, "phoneNumber", d.PhoneNumber)
	setIf(f, "dateOfBirth", d.DateOfBirth)
	setIf(f, "profilePicture", d.ProfilePicture)
	setIf(f, "licenseNumber", d.LicenseNumber)
	setIf(f, "licenseExpiryDate", d.LicenseExpiryDate)
	setIf(f, "vehicleDetails", d.VehicleDetails)
	setIf(f, "bankDetails", d.BankDetails)
	setIf(f, "documents", d.Documents)
	return f
}

func (d DriverUpdate) Apply(u User) {
	t := u.Driver
	if t == nil {
		return
	}
	assign(&t.FirstName, d.FirstName)
	assign(&t.LastName, d.LastName)
	assign(&t.PhoneNumber, d.PhoneNumber)
	if d.DateOfBirth != nil {
		t.DateOfBirth = cloneTime(d.DateOfBirth)
	}
	assign(&t.ProfilePicture, d.ProfilePicture)
	assign(&t.LicenseNumber, d.LicenseNumber)
	assign(&t.LicenseExpiryDate, d.LicenseExpiryDate)
	assign(&t.VehicleDetails, d.VehicleDetails)
	assign(&t.BankDetails, d.BankDetails)
	assign(&t.Documents, d.Documents)
	t.UpdatedAt = d.UpdatedAt
}

func setIf[T any](f map[string]any, key string, v *T) {
	if v != nil {
		f[key] = *v
	}
}

func assign[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
