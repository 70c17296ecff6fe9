package domain

import "time"

// Claims is the identity carried inside a bearer token.
type Claims struct {
	ID        string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// ClaimsFor builds token claims for u; expiry is set by the issuer.
func ClaimsFor(u User) Claims {
	acc := u.Account()
	if acc == nil {
		return Claims{}
	}
	return Claims{ID: acc.ID, Email: acc.Email, Role: acc.Role}
}
