package validation

// Request shapes as they arrive on the wire. Dates stay strings until the
// rules have accepted them; pointers mark optional values so that "absent"
// and "empty" stay distinguishable.

type emergencyContactPayload struct {
	Name         string `json:"name"         validate:"required,min=2"`
	PhoneNumber  string `json:"phoneNumber"  validate:"required,phone"`
	Relationship string `json:"relationship" validate:"required,min=2"`
}

type passengerPayload struct {
	Email                  string                   `json:"email"                  validate:"required,emailfmt"`
	Password               string                   `json:"password"               validate:"required,min=8,pwdmix"`
	FirstName              string                   `json:"firstName"              validate:"required,min=2"`
	LastName               string                   `json:"lastName"               validate:"required,min=2"`
	Username               string                   `json:"username"               validate:"required,min=2"`
	Gender                 *string                  `json:"gender"                 validate:"omitempty,oneof=male female other"`
	PhoneNumber            string                   `json:"phoneNumber"            validate:"required,phone"`
	DateOfBirth            *string                  `json:"dateOfBirth"            validate:"omitempty,adult"`
	ProfilePicture         *string                  `json:"profilePicture"         validate:"omitempty,url"`
	Role                   string                   `json:"role"                   validate:"required,eq=passenger"`
	PreferredPaymentMethod *string                  `json:"preferredPaymentMethod" validate:"omitempty,oneof=cash card wallet"`
	EmergencyContact       *emergencyContactPayload `json:"emergencyContact"       validate:"omitempty"`
}

type vehicleDetailsPayload struct {
	Make                string  `json:"make"                validate:"required,min=2"`
	Model               string  `json:"model"               validate:"required,min=2"`
	Year                float64 `json:"year"                validate:"required,integral,min=1990,maxyear"`
	Color               string  `json:"color"               validate:"required,min=2"`
	LicensePlate        string  `json:"licensePlate"        validate:"required,plate"`
	InsuranceNumber     string  `json:"insuranceNumber"     validate:"required,min=5"`
	InsuranceExpiryDate string  `json:"insuranceExpiryDate" validate:"required,future"`
}

type bankDetailsPayload struct {
	AccountNumber string `json:"accountNumber" validate:"required,min=10"`
	BankName      string `json:"bankName"      validate:"required,min=2"`
	AccountName   string `json:"accountName"   validate:"required,min=2"`
}

type documentsPayload struct {
	DriverLicense        string `json:"driverLicense"        validate:"required,url"`
	VehicleRegistration  string `json:"vehicleRegistration"  validate:"required,url"`
	InsuranceCertificate string `json:"insuranceCertificate" validate:"required,url"`
	BackgroundCheck      string `json:"backgroundCheck"      validate:"required,url"`
}

// Drivers share the base user rules, so username and gender are checked
// even though the driver record does not keep them.
type driverPayload struct {
	Email             string                 `json:"email"             validate:"required,emailfmt"`
	Password          string                 `json:"password"          validate:"required,min=8,pwdmix"`
	FirstName         string                 `json:"firstName"         validate:"required,min=2"`
	LastName          string                 `json:"lastName"          validate:"required,min=2"`
	Username          string                 `json:"username"          validate:"required,min=2"`
	Gender            *string                `json:"gender"            validate:"omitempty,oneof=male female other"`
	PhoneNumber       string                 `json:"phoneNumber"       validate:"required,phone"`
	DateOfBirth       *string                `json:"dateOfBirth"       validate:"omitempty,adult"`
	ProfilePicture    *string                `json:"profilePicture"    validate:"omitempty,url"`
	Role              string                 `json:"role"              validate:"required,eq=driver"`
	LicenseNumber     string                 `json:"licenseNumber"     validate:"required,min=5"`
	LicenseExpiryDate string                 `json:"licenseExpiryDate" validate:"required,future"`
	VehicleDetails    *vehicleDetailsPayload `json:"vehicleDetails"    validate:"required"`
	BankDetails       *bankDetailsPayload    `json:"bankDetails"       validate:"omitempty"`
	Documents         *documentsPayload      `json:"documents"         validate:"required"`
}

type loginPayload struct {
	Email    string `json:"email"    validate:"required,emailfmt"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=passenger driver"`
}

// Update payloads: every field optional, identity fields absent. Expiry
// dates only have to parse here; they are enforced at registration.

type passengerUpdatePayload struct {
	FirstName              *string                  `json:"firstName"              validate:"omitempty,min=2"`
	LastName               *string                  `json:"lastName"               validate:"omitempty,min=2"`
	Username               *string                  `json:"username"               validate:"omitempty,min=2"`
	Gender                 *string                  `json:"gender"                 validate:"omitempty,oneof=male female other"`
	PhoneNumber            *string                  `json:"phoneNumber"            validate:"omitempty,phone"`
	DateOfBirth            *string                  `json:"dateOfBirth"            validate:"omitempty,adult"`
	ProfilePicture         *string                  `json:"profilePicture"         validate:"omitempty,url"`
	PreferredPaymentMethod *string                  `json:"preferredPaymentMethod" validate:"omitempty,oneof=cash card wallet"`
	EmergencyContact       *emergencyContactPayload `json:"emergencyContact"       validate:"omitempty"`
}

type vehicleDetailsUpdatePayload struct {
	Make                string  `json:"make"                validate:"required,min=2"`
	Model               string  `json:"model"               validate:"required,min=2"`
	Year                float64 `json:"year"                validate:"required,integral,min=1990,maxyear"`
	Color               string  `json:"color"               validate:"required,min=2"`
	LicensePlate        string  `json:"licensePlate"        validate:"required,plate"`
	InsuranceNumber     string  `json:"insuranceNumber"     validate:"required,min=5"`
	InsuranceExpiryDate string  `json:"insuranceExpiryDate" validate:"required,isodate"`
}

type driverUpdatePayload struct {
	FirstName         *string                      `json:"firstName"         validate:"omitempty,min=2"`
	LastName          *string                      `json:"lastName"          validate:"omitempty,min=2"`
	Username          *string                      `json:"username"          validate:"omitempty,min=2"`
	Gender            *string                      `json:"gender"            validate:"omitempty,oneof=male female other"`
	PhoneNumber       *string                      `json:"phoneNumber"       validate:"omitempty,phone"`
	DateOfBirth       *string                      `json:"dateOfBirth"       validate:"omitempty,adult"`
	ProfilePicture    *string                      `json:"profilePicture"    validate:"omitempty,url"`
	LicenseNumber     *string                      `json:"licenseNumber"     validate:"omitempty,min=5"`
	LicenseExpiryDate *string                      `json:"licenseExpiryDate" validate:"omitempty,isodate"`
	VehicleDetails    *vehicleDetailsUpdatePayload `json:"vehicleDetails"    validate:"omitempty"`
	BankDetails       *bankDetailsPayload          `json:"bankDetails"       validate:"omitempty"`
	Documents         *documentsPayload            `json:"documents"         validate:"omitempty"`
}
