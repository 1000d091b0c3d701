package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/internal/services/servicestest"
)

var ctx = context.Background()

type world struct {
	landlord  *models.Identity
	tenant    *models.Identity
	other     *models.Identity
	property  *models.Property
	profiles  *servicestest.Profiles
	props     *servicestest.Properties
	tenancies *servicestest.Tenancies
	payments  *servicestest.Payments
	directory *servicestest.Directory
	processor *servicestest.Processor
	cache     *servicestest.Cache
}

// newWorld seeds a landlord owning one property, a tenant actively assigned to
// it, and a second landlord with no properties.
func newWorld() *world {
	w := &world{
		landlord: &models.Identity{ID: uuid.NewString(), Email: "owner@example.com", UserType: models.RoleLandlord},
		tenant:   &models.Identity{ID: uuid.NewString(), Email: "tenant@example.com", UserType: models.RoleTenant},
		other:    &models.Identity{ID: uuid.NewString(), Email: "other@example.com", UserType: models.RoleLandlord},
	}
	w.property = &models.Property{
		ID:          uuid.NewString(),
		LandlordID:  w.landlord.ID,
		Title:       "Maple Court 4B",
		Address:     "12 Maple Court, Toronto",
		MonthlyRent: 1500,
		CreatedAt:   time.Now().UTC(),
	}

	w.profiles = servicestest.NewProfiles(
		&models.Profile{ID: w.landlord.ID, UserType: models.RoleLandlord},
		&models.Profile{ID: w.tenant.ID, UserType: models.RoleTenant},
		&models.Profile{ID: w.other.ID, UserType: models.RoleLandlord},
	)
	w.props = servicestest.NewProperties(w.property)
	w.tenancies = servicestest.NewTenancies(w.props, &models.Tenancy{
		TenantID:   w.tenant.ID,
		PropertyID: w.property.ID,
		StartDate:  "2024-01-01",
		IsActive:   true,
	})
	w.payments = servicestest.NewPayments()
	w.directory = &servicestest.Directory{Users: []models.DirectoryUser{
		{ID: w.landlord.ID, Email: w.landlord.Email},
		{ID: w.tenant.ID, Email: w.tenant.Email},
		{ID: w.other.ID, Email: w.other.Email},
	}}
	w.processor = &servicestest.Processor{}
	w.cache = servicestest.NewCache()
	return w
}

func (w *world) policy() *services.Policy {
	return services.NewPolicy(w.profiles, w.props, w.tenancies)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
