package services

import (
	"context"
	"errors"
	"fmt"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
)

// Action names a guarded operation.
type Action string

const (
	// ActionManageProperty covers every property write.
	ActionManageProperty Action = "property:manage"
	// ActionOwnProperty requires the caller to own Resource.PropertyID.
	ActionOwnProperty Action = "property:own"
	// ActionPayForProperty requires an active tenancy on Resource.PropertyID.
	ActionPayForProperty Action = "payment:create"
	// ActionAssignTenant requires Resource.UserID to hold the tenant role.
	ActionAssignTenant Action = "tenancy:assign"
)

// Resource identifies what an action targets.
type Resource struct {
	PropertyID string
	UserID     string
}

// Policy re-reads role and ownership from the store on every call.
type Policy struct {
	profiles   ProfileStore
	properties PropertyStore
	tenancies  TenancyStore
}

func NewPolicy(profiles ProfileStore, properties PropertyStore, tenancies TenancyStore) *Policy {
	return &Policy{profiles: profiles, properties: properties, tenancies: tenancies}
}

// Authorize returns nil when identity may perform action on res.
func (p *Policy) Authorize(ctx context.Context, identity *models.Identity, action Action, res Resource) error {
	if identity == nil || identity.ID == "" {
		return apperr.Unauthorized("Unauthorized")
	}

	switch action {
	case ActionManageProperty:
		return p.requireLandlord(ctx, identity.ID)

	case ActionOwnProperty:
		if err := p.requireLandlord(ctx, identity.ID); err != nil {
			return err
		}
		prop, err := p.properties.Get(ctx, res.PropertyID)
		if errors.Is(err, models.ErrNotFound) {
			return apperr.NotFound("Property not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load property", err)
		}
		if prop.LandlordID != identity.ID {
			return apperr.NotFound("Property not found")
		}
		return nil

	case ActionPayForProperty:
		ok, err := p.tenancies.HasActive(ctx, identity.ID, res.PropertyID)
		if err != nil {
			return apperr.Internal("Failed to check tenancy", err)
		}
		if !ok {
			return apperr.Forbidden("Access denied to this property")
		}
		return nil

	case ActionAssignTenant:
		target, err := p.profiles.Get(ctx, res.UserID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return apperr.Internal("Failed to load tenant profile", err)
		}
		if !target.IsTenant() {
			return apperr.InvalidRequest("User is not a tenant")
		}
		return nil
	}

	return apperr.Internal("Unknown action", fmt.Errorf("unhandled action %q", action))
}

func (p *Policy) requireLandlord(ctx context.Context, userID string) error {
	profile, err := p.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return apperr.Internal("Failed to load profile", err)
	}
	if !profile.IsLandlord() {
		return apperr.Forbidden("Only landlords can manage properties")
	}
	return nil
}
