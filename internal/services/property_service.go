package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/timeutil"
	"rentpay-backend/internal/validation"
)

// PropertyService manages properties and the tenancies that link tenants to them.
type PropertyService struct {
	properties PropertyStore
	tenancies  TenancyStore
	profiles   ProfileStore
	directory  UserDirectory
	policy     *Policy
	log        *logrus.Entry
}

func NewPropertyService(properties PropertyStore, tenancies TenancyStore, profiles ProfileStore, directory UserDirectory, policy *Policy) *PropertyService {
	return &PropertyService{
		properties: properties,
		tenancies:  tenancies,
		profiles:   profiles,
		directory:  directory,
		policy:     policy,
		log:        logrus.WithField("component", "properties"),
	}
}

// List returns owned properties for a landlord, or active tenancies with their property for a tenant.
func (s *PropertyService) List(ctx context.Context, identity *models.Identity) (interface{}, error) {
	profile, err := s.profiles.Get(ctx, identity.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to load profile", err)
	}

	if profile.IsLandlord() {
		props, err := s.properties.ListByLandlord(ctx, identity.ID)
		if err != nil {
			return nil, apperr.Internal("Failed to list properties", err)
		}
		return props, nil
	}

	tenancies, err := s.tenancies.ListActiveForTenant(ctx, identity.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to list properties", err)
	}
	return tenancies, nil
}

func (s *PropertyService) Create(ctx context.Context, identity *models.Identity, req *models.CreatePropertyRequest) (*models.Property, error) {
	if err := s.policy.Authorize(ctx, identity, ActionManageProperty, Resource{}); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	prop := &models.Property{
		LandlordID:  identity.ID,
		Title:       req.Title,
		Address:     req.Address,
		MonthlyRent: req.MonthlyRent,
	}
	if err := s.properties.Create(ctx, prop); err != nil {
		return nil, apperr.Internal("Failed to create property", err)
	}

	s.log.WithFields(logrus.Fields{"property_id": prop.ID, "landlord_id": identity.ID}).Info("property created")
	return prop, nil
}

// Update applies a partial update to a property the caller owns.
func (s *PropertyService) Update(ctx context.Context, identity *models.Identity, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	if err := s.policy.Authorize(ctx, identity, ActionManageProperty, Resource{}); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.InvalidRequest("Property ID is required")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound("Property not found")
	}

	prop, err := s.properties.Update(ctx, id, identity.ID, req)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Property not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update property", err)
	}
	return prop, nil
}

// Delete removes a property the caller owns. Other landlords' rows are never touched.
func (s *PropertyService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	if err := s.policy.Authorize(ctx, identity, ActionManageProperty, Resource{}); err != nil {
		return err
	}
	if id == "" {
		return apperr.InvalidRequest("Property ID is required")
	}
	if !validID(id) {
		return apperr.NotFound("Property not found")
	}

	deleted, err := s.properties.Delete(ctx, id, identity.ID)
	if err != nil {
		return apperr.Internal("Failed to delete property", err)
	}
	if !deleted {
		return apperr.NotFound("Property not found")
	}

	s.log.WithFields(logrus.Fields{"property_id": id, "landlord_id": identity.ID}).Info("property deleted")
	return nil
}

// AssignTenant links the user registered under req.TenantEmail to an owned property.
func (s *PropertyService) AssignTenant(ctx context.Context, identity *models.Identity, req *models.AssignTenantRequest) (*models.Tenancy, error) {
	if err := s.policy.Authorize(ctx, identity, ActionManageProperty, Resource{}); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkTenancyDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, identity, ActionOwnProperty, Resource{PropertyID: req.PropertyID}); err != nil {
		return nil, err
	}

	user, err := s.directory.FindByEmail(ctx, req.TenantEmail)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to look up tenant", err)
	}

	if err := s.policy.Authorize(ctx, identity, ActionAssignTenant, Resource{UserID: user.ID}); err != nil {
		return nil, err
	}

	tenancy := &models.Tenancy{
		TenantID:   user.ID,
		PropertyID: req.PropertyID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		IsActive:   true,
	}
	if err := s.tenancies.Create(ctx, tenancy); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.InvalidRequest("Tenant is already assigned to this property")
		}
		return nil, apperr.Internal("Failed to assign tenant", err)
	}

	s.log.WithFields(logrus.Fields{
		"tenancy_id":  tenancy.ID,
		"property_id": req.PropertyID,
		"tenant_id":   user.ID,
	}).Info("tenant assigned")
	return tenancy, nil
}

// DeactivateTenancy ends a tenancy on a property the caller owns.
func (s *PropertyService) DeactivateTenancy(ctx context.Context, identity *models.Identity, tenancyID string) (*models.Tenancy, error) {
	if err := s.policy.Authorize(ctx, identity, ActionManageProperty, Resource{}); err != nil {
		return nil, err
	}

	if !validID(tenancyID) {
		return nil, apperr.NotFound("Tenancy not found")
	}

	tenancy, err := s.tenancies.Get(ctx, tenancyID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Tenancy not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load tenancy", err)
	}

	if err := s.policy.Authorize(ctx, identity, ActionOwnProperty, Resource{PropertyID: tenancy.PropertyID}); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Tenancy not found")
		}
		return nil, err
	}

	updated, err := s.tenancies.Deactivate(ctx, tenancyID)
	if err != nil {
		return nil, apperr.Internal("Failed to deactivate tenancy", err)
	}
	return updated, nil
}

// checkTenancyDates rejects a tenancy that ends before it starts. Both dates
// have already passed format validation.
func checkTenancyDates(start string, end *string) error {
	if end == nil {
		return nil
	}
	from, err := timeutil.ParseDate(start)
	if err != nil {
		return nil
	}
	to, err := timeutil.ParseDate(*end)
	if err != nil {
		return nil
	}
	if to.Before(from) {
		return apperr.Validation([]apperr.FieldError{{Field: "endDate", Message: "endDate must not be before startDate"}})
	}
	return nil
}

// validID reports whether id can name a row. Malformed ids are treated as misses.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
