package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/metrics"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/validation"
)

// PaymentService opens card payment intents for tenants.
type PaymentService struct {
	profiles  ProfileStore
	policy    *Policy
	processor PaymentProcessor
	currency  string
	log       *logrus.Entry
}

func NewPaymentService(profiles ProfileStore, policy *Policy, processor PaymentProcessor, currency string) *PaymentService {
	return &PaymentService{
		profiles:  profiles,
		policy:    policy,
		processor: processor,
		currency:  currency,
		log:       logrus.WithField("component", "payments"),
	}
}

// CreateIntent validates and authorizes the request, resolves the caller's
// processor customer, and returns the intent's client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, identity *models.Identity, req *models.CreatePaymentIntentRequest) (*models.ClientSecretResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, identity, ActionPayForProperty, Resource{PropertyID: req.PropertyID}); err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("denied").Inc()
		return nil, err
	}

	customerID, err := s.ResolveCustomer(ctx, identity)
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	intent, err := s.processor.CreatePaymentIntent(ctx, models.PaymentIntentParams{
		Amount:           req.Amount,
		Currency:         s.currency,
		CustomerID:       customerID,
		TenantID:         identity.ID,
		PropertyID:       req.PropertyID,
		SetupFutureUsage: req.SaveCard,
	})
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return nil, processorError("Failed to create payment intent", err)
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	s.log.WithFields(logrus.Fields{
		"payment_intent_id": intent.ID,
		"tenant_id":         identity.ID,
		"property_id":       req.PropertyID,
		"amount":            req.Amount,
	}).Info("payment intent created")

	return &models.ClientSecretResponse{ClientSecret: intent.ClientSecret}, nil
}

// ResolveCustomer returns the caller's processor customer id, creating and
// storing one on first use. The processor call is idempotent per user and the
// store write only succeeds while the column is unset, so concurrent first
// payments converge on one customer.
func (s *PaymentService) ResolveCustomer(ctx context.Context, identity *models.Identity) (string, error) {
	profile, err := s.profiles.Get(ctx, identity.ID)
	if errors.Is(err, models.ErrNotFound) {
		return "", apperr.NotFound("Profile not found")
	}
	if err != nil {
		return "", apperr.Internal("Failed to load profile", err)
	}
	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}

	customerID, err := s.processor.CreateCustomer(ctx, models.CustomerParams{
		UserID:         identity.ID,
		Email:          identity.Email,
		IdempotencyKey: "customer-" + identity.ID,
	})
	if err != nil {
		return "", processorError("Failed to create customer", err)
	}

	stored, err := s.profiles.SetStripeCustomerID(ctx, identity.ID, customerID)
	if err != nil {
		return "", apperr.Internal("Failed to save customer", err)
	}
	if stored {
		metrics.ProcessorCustomersCreated.Inc()
		s.log.WithFields(logrus.Fields{"user_id": identity.ID, "customer_id": customerID}).Info("processor customer created")
		return customerID, nil
	}

	// Another request stored a customer first; use theirs.
	profile, err = s.profiles.Get(ctx, identity.ID)
	if err != nil {
		return "", apperr.Internal("Failed to load profile", err)
	}
	if profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return "", apperr.Internal("Failed to save customer", errors.New("customer id not stored"))
	}
	return *profile.StripeCustomerID, nil
}

// processorError keeps caller-facing processor rejections and hides the rest.
func processorError(msg string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(msg, err)
}
