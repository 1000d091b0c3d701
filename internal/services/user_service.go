package services

import (
	"context"
	"errors"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/validation"
)

// ProfileService serves the caller's own profile.
type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns the caller's profile, creating it on first fetch with the role
// the identity service recorded at signup.
func (s *ProfileService) Get(ctx context.Context, identity *models.Identity) (*models.UserResponse, error) {
	profile, err := s.ensure(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &models.UserResponse{Email: identity.Email, Profile: profile}, nil
}

// Update changes only the fields present in req.
func (s *ProfileService) Update(ctx context.Context, identity *models.Identity, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.ensure(ctx, identity); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Update(ctx, identity.ID, req)
	if err != nil {
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return &models.UserResponse{Email: identity.Email, Profile: profile}, nil
}

func (s *ProfileService) ensure(ctx context.Context, identity *models.Identity) (*models.Profile, error) {
	profile, err := s.profiles.Get(ctx, identity.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Internal("Failed to load profile", err)
	}

	role := models.RoleTenant
	if identity.UserType == models.RoleLandlord {
		role = models.RoleLandlord
	}
	profile, err = s.profiles.Create(ctx, identity.ID, role)
	if err != nil {
		return nil, apperr.Internal("Failed to create profile", err)
	}
	return profile, nil
}
