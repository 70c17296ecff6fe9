// Package validation checks and normalizes identity payloads. Every schema
// reports all violated fields at once; a successful call yields the typed
// value the user service works with.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// Kind selects a payload schema.
type Kind string

const (
	KindPassengerRegistration Kind = "passenger_registration"
	KindDriverRegistration    Kind = "driver_registration"
	KindLogin                 Kind = "login"
	KindPassengerUpdate       Kind = "passenger_update"
	KindDriverUpdate          Kind = "driver_update"
)

// Engine implements ports.PayloadValidator.
type Engine struct {
	v   *validator.Validate
	now func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used by age and expiry rules.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	registerRules(v, func() time.Time { return e.now() })
	e.v = v
	return e
}

var _ ports.PayloadValidator = (*Engine)(nil)

// Validate runs the schema for kind and returns the normalized value:
// *ports.PassengerRegistration, *ports.DriverRegistration, *ports.LoginInput,
// *domain.PassengerUpdate or *domain.DriverUpdate.
func (e *Engine) Validate(kind Kind, raw []byte) (any, error) {
	switch kind {
	case KindPassengerRegistration:
		return e.PassengerRegistration(raw)
	case KindDriverRegistration:
		return e.DriverRegistration(raw)
	case KindLogin:
		return e.Login(raw)
	case KindPassengerUpdate:
		return e.PassengerUpdate(raw)
	case KindDriverUpdate:
		return e.DriverUpdate(raw)
	default:
		return nil, fmt.Errorf("validation: unknown schema %q", kind)
	}
}

func (e *Engine) PassengerRegistration(raw []byte) (*ports.PassengerRegistration, error) {
	var p passengerPayload
	if err := e.check(raw, &p); err != nil {
		return nil, err
	}

	out := &ports.PassengerRegistration{
		Email:                  p.Email,
		Password:               p.Password,
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Username:               p.Username,
		Gender:                 genderOf(p.Gender),
		PhoneNumber:            p.PhoneNumber,
		DateOfBirth:            dateOf(p.DateOfBirth),
		ProfilePicture:         valueOf(p.ProfilePicture),
		PreferredPaymentMethod: domain.PaymentCash,
		EmergencyContact:       emergencyContactOf(p.EmergencyContact),
	}
	if m := p.PreferredPaymentMethod; m != nil {
		out.PreferredPaymentMethod = domain.PaymentMethod(*m)
	}
	return out, nil
}

func (e *Engine) DriverRegistration(raw []byte) (*ports.DriverRegistration, error) {
	var p driverPayload
	if err := e.check(raw, &p); err != nil {
		return nil, err
	}

	licenseExpiry, _ := parseDate(p.LicenseExpiryDate)
	insuranceExpiry, _ := parseDate(p.VehicleDetails.InsuranceExpiryDate)

	return &ports.DriverRegistration{
		Email:             p.Email,
		Password:          p.Password,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		PhoneNumber:       p.PhoneNumber,
		DateOfBirth:       dateOf(p.DateOfBirth),
		ProfilePicture:    valueOf(p.ProfilePicture),
		LicenseNumber:     p.LicenseNumber,
		LicenseExpiryDate: licenseExpiry,
		VehicleDetails: domain.VehicleDetails{
			Make:                p.VehicleDetails.Make,
			Model:               p.VehicleDetails.Model,
			Year:                int(p.VehicleDetails.Year),
			Color:               p.VehicleDetails.Color,
			LicensePlate:        p.VehicleDetails.LicensePlate,
			InsuranceNumber:     p.VehicleDetails.InsuranceNumber,
			InsuranceExpiryDate: insuranceExpiry,
		},
		BankDetails: bankDetailsOf(p.BankDetails),
		Documents:   documentsOf(p.Documents),
	}, nil
}

func (e *Engine) Login(raw []byte) (*ports.LoginInput, error) {
	var p loginPayload
	if err := e.check(raw, &p); err != nil {
		return nil, err
	}
	return &ports.LoginInput{
		Email:    p.Email,
		Password: p.Password,
		Role:     domain.Role(p.Role),
	}, nil
}

func (e *Engine) PassengerUpdate(raw []byte) (*domain.PassengerUpdate, error) {
	var p passengerUpdatePayload
	if err := e.check(raw, &p); err != nil {
		return nil, err
	}

	out := &domain.PassengerUpdate{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Username:         p.Username,
		Gender:           genderOf(p.Gender),
		PhoneNumber:      p.PhoneNumber,
		DateOfBirth:      dateOf(p.DateOfBirth),
		ProfilePicture:   p.ProfilePicture,
		EmergencyContact: emergencyContactOf(p.EmergencyContact),
	}
	if m := p.PreferredPaymentMethod; m != nil {
		method := domain.PaymentMethod(*m)
		out.PreferredPaymentMethod = &method
	}
	return out, nil
}

func (e *Engine) DriverUpdate(raw []byte) (*domain.DriverUpdate, error) {
	var p driverUpdatePayload
	if err := e.check(raw, &p); err != nil {
		return nil, err
	}

	out := &domain.DriverUpdate{
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		PhoneNumber:       p.PhoneNumber,
		DateOfBirth:       dateOf(p.DateOfBirth),
		ProfilePicture:    p.ProfilePicture,
		LicenseNumber:     p.LicenseNumber,
		LicenseExpiryDate: dateOf(p.LicenseExpiryDate),
		BankDetails:       bankDetailsOf(p.BankDetails),
	}
	if vd := p.VehicleDetails; vd != nil {
		expiry, _ := parseDate(vd.InsuranceExpiryDate)
		out.VehicleDetails = &domain.VehicleDetails{
			Make:                vd.Make,
			Model:               vd.Model,
			Year:                int(vd.Year),
			Color:               vd.Color,
			LicensePlate:        vd.LicensePlate,
			InsuranceNumber:     vd.InsuranceNumber,
			InsuranceExpiryDate: expiry,
		}
	}
	if p.Documents != nil {
		docs := documentsOf(p.Documents)
		out.Documents = &docs
	}
	return out, nil
}

// check decodes raw into dst and runs the struct rules. Type mismatches and
// rule violations are merged into one *domain.ValidationError.
func (e *Engine) check(raw []byte, dst any) error {
	var fields []domain.FieldError

	mismatched, err := decode(raw, dst)
	if err != nil {
		return err
	}
	for path, msg := range mismatched {
		fields = append(fields, domain.FieldError{Field: path, Message: msg})
	}

	if err := e.v.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return fmt.Errorf("validation: %w", err)
		}
		for _, fe := range ve {
			path := fieldPath(fe)
			if _, seen := mismatched[path]; seen {
				continue
			}
			fields = append(fields, domain.FieldError{Field: path, Message: fieldMessage(path, fe)})
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// decode unmarshals raw into dst. It returns the type mismatches keyed by
// JSON path, or a ValidationError when the body is not a JSON object at all.
func decode(raw []byte, dst any) (map[string]string, error) {
	mismatched := map[string]string{}

	err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst)
	if err == nil {
		return mismatched, nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return nil, domain.NewValidationError("", "Request body is required")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		// The decoder keeps going after a type mismatch, but only reports
		// the first one; the rest surface through the struct rules.
		mismatched[typeErr.Field] = fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value)
		return mismatched, nil
	case errors.As(err, &typeErr):
		return nil, domain.NewValidationError("", "Request body must be a JSON object")
	default:
		return nil, domain.NewValidationError("", "Malformed JSON payload")
	}
}

// fieldPath drops the root struct name from the validator namespace,
// leaving the dotted JSON path.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
