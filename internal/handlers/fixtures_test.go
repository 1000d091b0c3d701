package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"rentpay-backend/internal/middleware"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/internal/services/servicestest"
)

var ctx = context.Background()

type fixture struct {
	landlord  *models.Identity
	tenant    *models.Identity
	property  *models.Property
	profiles  *servicestest.Profiles
	props     *servicestest.Properties
	tenancies *servicestest.Tenancies
	payments  *servicestest.Payments
	processor *servicestest.Processor
	cache     *servicestest.Cache
	directory *servicestest.Directory
}

func newFixture() *fixture {
	f := &fixture{
		landlord: &models.Identity{ID: uuid.NewString(), Email: "owner@example.com", UserType: models.RoleLandlord},
		tenant:   &models.Identity{ID: uuid.NewString(), Email: "tenant@example.com", UserType: models.RoleTenant},
	}
	f.property = &models.Property{
		ID:          uuid.NewString(),
		LandlordID:  f.landlord.ID,
		Title:       "Harbour Loft",
		Address:     "88 Queens Quay W, Toronto",
		MonthlyRent: 2100,
		CreatedAt:   time.Now().UTC(),
	}
	f.profiles = servicestest.NewProfiles(
		&models.Profile{ID: f.landlord.ID, UserType: models.RoleLandlord},
		&models.Profile{ID: f.tenant.ID, UserType: models.RoleTenant},
	)
	f.props = servicestest.NewProperties(f.property)
	f.tenancies = servicestest.NewTenancies(f.props, &models.Tenancy{
		TenantID:   f.tenant.ID,
		PropertyID: f.property.ID,
		StartDate:  "2024-03-01",
		IsActive:   true,
	})
	f.payments = servicestest.NewPayments()
	f.processor = &servicestest.Processor{}
	f.cache = servicestest.NewCache()
	f.directory = &servicestest.Directory{Users: []models.DirectoryUser{
		{ID: f.landlord.ID, Email: f.landlord.Email},
		{ID: f.tenant.ID, Email: f.tenant.Email},
	}}
	return f
}

func (f *fixture) policy() *services.Policy {
	return services.NewPolicy(f.profiles, f.props, f.tenancies)
}

// request builds a request as the auth middleware would hand it on.
func request(t *testing.T, method, target string, caller *models.Identity, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if caller != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	}
	return req
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}
