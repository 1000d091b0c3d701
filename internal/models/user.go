package models

import (
	"errors"
	"time"
)

// Roles a profile can hold.
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Identity is the caller as vouched for by the identity service's access token.
type Identity struct {
	ID    string
	Email string
	// UserType is the role hint carried in the token's user metadata. It is only
	// used to seed a profile on first fetch; authorization reads the stored role.
	UserType string
}

// DirectoryUser is a row of the identity service's user list.
type DirectoryUser struct {
	ID    string
	Email string
}

// Profile is the application-side record for an identity.
type Profile struct {
	ID               string    `json:"id"`
	UserType         string    `json:"user_type"`
	FullName         *string   `json:"full_name"`
	StripeCustomerID *string   `json:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsLandlord reports whether the profile holds the landlord role.
func (p *Profile) IsLandlord() bool {
	return p != nil && p.UserType == RoleLandlord
}

// IsTenant reports whether the profile holds the tenant role.
func (p *Profile) IsTenant() bool {
	return p != nil && p.UserType == RoleTenant
}

// UserResponse is the profile merged with the identity's email.
type UserResponse struct {
	Email string `json:"email"`
	*Profile
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitnil,min=2"`
	UserType *string `json:"userType" validate:"omitnil,oneof=tenant landlord"`
}
