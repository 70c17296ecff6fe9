package validation

import (
	"time"

	"github.com/switchserver/identity/internal/core/domain"
)

// Helpers that turn accepted payload fields into domain values. A nil
// pointer means the client left the field out.

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func genderOf(s *string) *domain.Gender {
	if s == nil {
		return nil
	}
	g := domain.Gender(*s)
	return &g
}

func dateOf(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := parseDate(*s)
	if !ok {
		return nil
	}
	return &t
}

func emergencyContactOf(p *emergencyContactPayload) *domain.EmergencyContact {
	if p == nil {
		return nil
	}
	return &domain.EmergencyContact{
		Name:         p.Name,
		PhoneNumber:  p.PhoneNumber,
		Relationship: p.Relationship,
	}
}

func bankDetailsOf(p *bankDetailsPayload) *domain.BankDetails {
	if p == nil {
		return nil
	}
	return &domain.BankDetails{
		AccountNumber: p.AccountNumber,
		BankName:      p.BankName,
		AccountName:   p.AccountName,
	}
}

func documentsOf(p *documentsPayload) domain.Documents {
	if p == nil {
		return domain.Documents{}
	}
	return domain.Documents{
		DriverLicense:        p.DriverLicense,
		VehicleRegistration:  p.VehicleRegistration,
		InsuranceCertificate: p.InsuranceCertificate,
		BackgroundCheck:      p.BackgroundCheck,
	}
}
