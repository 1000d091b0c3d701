package models

import "time"

type Property struct {
	ID          string    `json:"id"`
	LandlordID  string    `json:"landlord_id"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	MonthlyRent float64   `json:"monthly_rent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PropertySummary is the slice of a property embedded in payment history rows.
type PropertySummary struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

type CreatePropertyRequest struct {
	Title       string  `json:"title" validate:"required,min=2"`
	Address     string  `json:"address" validate:"required,min=5"`
	MonthlyRent float64 `json:"monthlyRent" validate:"gt=0"`
}

// UpdatePropertyRequest carries only the fields the caller wants changed.
type UpdatePropertyRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=2"`
	Address     *string  `json:"address" validate:"omitnil,min=5"`
	MonthlyRent *float64 `json:"monthlyRent" validate:"omitnil,gt=0"`
}

// Empty reports whether the request changes nothing.
func (r *UpdatePropertyRequest) Empty() bool {
	return r.Title == nil && r.Address == nil && r.MonthlyRent == nil
}

// Tenancy links a tenant to a property for a rental period.
type Tenancy struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	PropertyID string    `json:"property_id"`
	StartDate  string    `json:"start_date"`
	EndDate    *string   `json:"end_date"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	Property   *Property `json:"properties,omitempty"`
}

type AssignTenantRequest struct {
	TenantEmail string  `json:"tenantEmail" validate:"required,email"`
	PropertyID  string  `json:"propertyId" validate:"required,uuid"`
	StartDate   string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     *string `json:"endDate" validate:"omitnil,datetime=2006-01-02"`
}
