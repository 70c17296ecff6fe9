package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies which partition a user record belongs to.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePassenger || r == RoleDriver
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

// Account is the capability set shared by every user variant.
// ID is assigned by the store and never persisted as a regular field.
type Account struct {
	ID        string    `json:"id" bson:"-"`
	Email     string    `json:"email" bson:"email"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// EmergencyContact is stored with empty strings when the passenger gave none.
type EmergencyContact struct {
	Name         string `json:"name" bson:"name"`
	PhoneNumber  string `json:"phoneNumber" bson:"phoneNumber"`
	Relationship string `json:"relationship" bson:"relationship"`
}

// Passenger is the rider variant of a user.
type Passenger struct {
	Account                `bson:",inline"`
	FirstName              string           `json:"firstName" bson:"firstName"`
	LastName               string           `json:"lastName" bson:"lastName"`
	Username               string           `json:"username" bson:"username"`
	Gender                 *Gender          `json:"gender,omitempty" bson:"gender,omitempty"`
	PhoneNumber            string           `json:"phoneNumber" bson:"phoneNumber"`
	DateOfBirth            *time.Time       `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	ProfilePicture         string           `json:"profilePicture" bson:"profilePicture"`
	PreferredPaymentMethod PaymentMethod    `json:"preferredPaymentMethod" bson:"preferredPaymentMethod"`
	WalletBalance          float64          `json:"walletBalance" bson:"walletBalance"`
	IsActive               bool             `json:"isActive" bson:"isActive"`
	EmergencyContact       EmergencyContact `json:"emergencyContact" bson:"emergencyContact"`
}

// VehicleDetails describes the car a driver operates.
type VehicleDetails struct {
	Make                string    `json:"make" bson:"make"`
	Model               string    `json:"model" bson:"model"`
	Year                int       `json:"year" bson:"year"`
	Color               string    `json:"color" bson:"color"`
	LicensePlate        string    `json:"licensePlate" bson:"licensePlate"`
	InsuranceNumber     string    `json:"insuranceNumber" bson:"insuranceNumber"`
	InsuranceExpiryDate time.Time `json:"insuranceExpiryDate" bson:"insuranceExpiryDate"`
}

type BankDetails struct {
	AccountNumber string `json:"accountNumber" bson:"accountNumber"`
	BankName      string `json:"bankName" bson:"bankName"`
	AccountName   string `json:"accountName" bson:"accountName"`
}

// Documents holds the URLs of the compliance documents every driver uploads.
type Documents struct {
	DriverLicense        string `json:"driverLicense" bson:"driverLicense"`
	VehicleRegistration  string `json:"vehicleRegistration" bson:"vehicleRegistration"`
	InsuranceCertificate string `json:"insuranceCertificate" bson:"insuranceCertificate"`
	BackgroundCheck      string `json:"backgroundCheck" bson:"backgroundCheck"`
}

// Driver is the vehicle-operator variant of a user.
type Driver struct {
	Account           `bson:",inline"`
	FirstName         string         `json:"firstName" bson:"firstName"`
	LastName          string         `json:"lastName" bson:"lastName"`
	PhoneNumber       string         `json:"phoneNumber" bson:"phoneNumber"`
	DateOfBirth       *time.Time     `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	ProfilePicture    string         `json:"profilePicture" bson:"profilePicture"`
	LicenseNumber     string         `json:"licenseNumber" bson:"licenseNumber"`
	LicenseExpiryDate time.Time      `json:"licenseExpiryDate" bson:"licenseExpiryDate"`
	VehicleDetails    VehicleDetails `json:"vehicleDetails" bson:"vehicleDetails"`
	Rating            float64        `json:"rating" bson:"rating"`
	TotalRides        int            `json:"totalRides" bson:"totalRides"`
	IsActive          bool           `json:"isActive" bson:"isActive"`
	IsAvailable       bool           `json:"isAvailable" bson:"isAvailable"`
	BankDetails       BankDetails    `json:"bankDetails" bson:"bankDetails"`
	Documents         Documents      `json:"documents" bson:"documents"`
}

// User is a tagged union over the two variants. Exactly one of Passenger or
// Driver is set; code that handles "any user" switches on Role().
type User struct {
	Passenger *Passenger
	Driver    *Driver
}

func PassengerUser(p *Passenger) User { return User{Passenger: p} }

func DriverUser(d *Driver) User { return User{Driver: d} }

// Role returns the variant tag, or "" for the zero User.
func (u User) Role() Role {
	switch {
	case u.Passenger != nil:
		return RolePassenger
	case u.Driver != nil:
		return RoleDriver
	default:
		return ""
	}
}

// Account returns the shared fields of whichever variant is set.
func (u User) Account() *Account {
	switch u.Role() {
	case RolePassenger:
		return &u.Passenger.Account
	case RoleDriver:
		return &u.Driver.Account
	default:
		return nil
	}
}

func (u User) ID() string {
	if acc := u.Account(); acc != nil {
		return acc.ID
	}
	return ""
}

func (u User) Email() string {
	if acc := u.Account(); acc != nil {
		return acc.Email
	}
	return ""
}

// Clone returns a deep copy so callers can mutate the result freely.
func (u User) Clone() User {
	switch u.Role() {
	case RolePassenger:
		p := *u.Passenger
		if p.Gender != nil {
			g := *p.Gender
			p.Gender = &g
		}
		p.DateOfBirth = cloneTime(p.DateOfBirth)
		return PassengerUser(&p)
	case RoleDriver:
		d := *u.Driver
		d.DateOfBirth = cloneTime(d.DateOfBirth)
		return DriverUser(&d)
	default:
		return User{}
	}
}

// MarshalJSON renders the active variant so responses carry a flat object.
func (u User) MarshalJSON() ([]byte, error) {
	switch u.Role() {
	case RolePassenger:
		return json.Marshal(u.Passenger)
	case RoleDriver:
		return json.Marshal(u.Driver)
	default:
		return []byte("null"), nil
	}
}

// UserRecord is what the store holds: the public user plus its password hash.
// The hash never leaves the service layer.
type UserRecord struct {
	User         User
	PasswordHash string
}

// Reassert forces the record's role tag to match the partition it was read
// from and fills in the store id.
func (r *UserRecord) Reassert(role Role, id string) error {
	if r.User.Role() != role {
		return fmt.Errorf("record decoded as %q in %q partition", r.User.Role(), role)
	}
	acc := r.User.Account()
	acc.Role = role
	acc.ID = id
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
