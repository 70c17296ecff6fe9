package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	platePattern = regexp.MustCompile(`^[A-Z0-9\s\-]{1,8}$`)
)

const (
	minAge = 18
	maxAge = 100
)

// dateLayouts are tried in order when reading a date string.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// registerRules installs the custom tags used by the payload schemas.
// now is read on every check so expiry and age rules track the clock.
func registerRules(v *validator.Validate, now func() time.Time) {
	mustRegister(v, "emailfmt", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "plate", func(fl validator.FieldLevel) bool {
		return platePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "pwdmix", func(fl validator.FieldLevel) bool {
		return hasPasswordMix(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})
	mustRegister(v, "future", func(fl validator.FieldLevel) bool {
		t, ok := parseDate(fl.Field().String())
		return ok && t.After(now())
	})
	// Age uses whole calendar years, not the exact birthday.
	mustRegister(v, "adult", func(fl validator.FieldLevel) bool {
		t, ok := parseDate(fl.Field().String())
		if !ok {
			return false
		}
		age := now().Year() - t.Year()
		return age >= minAge && age <= maxAge
	})
	// JSON numbers arrive as float64; 2020.0 is a whole year, 2020.5 is not.
	mustRegister(v, "integral", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	mustRegister(v, "maxyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() <= float64(now().Year()+1)
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func hasPasswordMix(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// messages maps "<json path>|<tag>" to the text shown to clients.
var messages = map[string]string{
	"email|emailfmt":     "Invalid email format",
	"password|min":       "Password must be at least 8 characters",
	"password|pwdmix":    "Password must contain at least one uppercase letter, one lowercase letter, and one number",
	"password|required":  "Password is required",
	"firstName|min":      "First name must be at least 2 characters",
	"lastName|min":       "Last name must be at least 2 characters",
	"username|min":       "Username must be at least 2 characters",
	"phoneNumber|phone":  "Invalid phone number format",
	"dateOfBirth|adult":  "You must be between 18 and 100 years old",
	"profilePicture|url": "Profile picture must be a valid URL",

	"emergencyContact.name|min":              "Emergency contact name must be at least 2 characters",
	"emergencyContact.phoneNumber|phone":     "Invalid emergency contact phone number",
	"emergencyContact.relationship|min":      "Relationship must be specified",
	"emergencyContact.relationship|required": "Relationship must be specified",

	"licenseNumber|min":         "License number must be at least 5 characters",
	"licenseExpiryDate|future":  "License expiry date must be a valid future date",
	"licenseExpiryDate|isodate": "License expiry date must be a valid date",

	"vehicleDetails.make|min":                    "Vehicle make must be specified",
	"vehicleDetails.model|min":                   "Vehicle model must be specified",
	"vehicleDetails.color|min":                   "Vehicle color must be specified",
	"vehicleDetails.year|min":                    "Vehicle year must be 1990 or later",
	"vehicleDetails.year|maxyear":                "Vehicle year cannot be in the future",
	"vehicleDetails.year|integral":               "Vehicle year must be a whole number",
	"vehicleDetails.licensePlate|plate":          "Invalid license plate format",
	"vehicleDetails.insuranceNumber|min":         "Insurance number must be at least 5 characters",
	"vehicleDetails.insuranceExpiryDate|future":  "Insurance expiry date must be a valid future date",
	"vehicleDetails.insuranceExpiryDate|isodate": "Insurance expiry date must be a valid date",

	"bankDetails.accountNumber|min": "Account number must be at least 10 digits",
	"bankDetails.bankName|min":      "Bank name must be specified",
	"bankDetails.accountName|min":   "Account name must be specified",

	"documents.driverLicense|url":        "Driver license document must be a valid URL",
	"documents.vehicleRegistration|url":  "Vehicle registration document must be a valid URL",
	"documents.insuranceCertificate|url": "Insurance certificate must be a valid URL",
	"documents.backgroundCheck|url":      "Background check document must be a valid URL",
}

// fieldMessage converts a single FieldError into the client-facing text.
func fieldMessage(path string, fe validator.FieldError) string {
	if msg, ok := messages[path+"|"+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "eq":
		return fmt.Sprintf("%s must be %q", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "url":
		return path + " must be a valid URL"
	case "isodate", "future", "adult":
		return path + " must be a valid date"
	default:
		return fmt.Sprintf("%s failed validation (%s)", path, fe.Tag())
	}
}
