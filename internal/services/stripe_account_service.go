package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
)

const paymentHistoryLimit = 50

// ReceiptRenderer turns a completed ledger row into a printable document.
type ReceiptRenderer interface {
	Render(payment *models.Payment, payer *models.Identity) ([]byte, error)
}

// AccountService covers the caller's processor account: saved cards, setup
// intents, ledger history and receipts.
type AccountService struct {
	profiles  ProfileStore
	payments  PaymentStore
	processor PaymentProcessor
	cache     PaymentMethodCache
	receipts  ReceiptRenderer
	log       *logrus.Entry
}

func NewAccountService(profiles ProfileStore, payments PaymentStore, processor PaymentProcessor, cache PaymentMethodCache, receipts ReceiptRenderer) *AccountService {
	return &AccountService{
		profiles:  profiles,
		payments:  payments,
		processor: processor,
		cache:     cache,
		receipts:  receipts,
		log:       logrus.WithField("component", "stripe-account"),
	}
}

// customerID returns the stored processor customer or fails with "No Stripe customer found".
func (s *AccountService) customerID(ctx context.Context, identity *models.Identity) (string, error) {
	profile, err := s.profiles.Get(ctx, identity.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", apperr.Internal("Failed to load profile", err)
	}
	if profile == nil || profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return "", apperr.InvalidRequest("No Stripe customer found")
	}
	return *profile.StripeCustomerID, nil
}

func (s *AccountService) PaymentMethods(ctx context.Context, identity *models.Identity) (*models.PaymentMethodsResponse, error) {
	customerID, err := s.customerID(ctx, identity)
	if err != nil {
		return nil, err
	}

	if methods, ok := s.cache.GetPaymentMethods(ctx, customerID); ok {
		return &models.PaymentMethodsResponse{PaymentMethods: methods}, nil
	}

	methods, err := s.processor.ListCardPaymentMethods(ctx, customerID)
	if err != nil {
		return nil, processorError("Failed to list payment methods", err)
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	s.cache.SetPaymentMethods(ctx, customerID, methods)

	return &models.PaymentMethodsResponse{PaymentMethods: methods}, nil
}

// DetachPaymentMethod removes a saved card. Cards of other customers are reported as not found.
func (s *AccountService) DetachPaymentMethod(ctx context.Context, identity *models.Identity, paymentMethodID string) error {
	customerID, err := s.customerID(ctx, identity)
	if err != nil {
		return err
	}

	owner, err := s.processor.PaymentMethodCustomer(ctx, paymentMethodID)
	if err != nil {
		return processorError("Failed to load payment method", err)
	}
	if owner != customerID {
		return apperr.NotFound("Payment method not found")
	}

	if err := s.processor.DetachPaymentMethod(ctx, paymentMethodID); err != nil {
		return processorError("Failed to detach payment method", err)
	}
	s.cache.InvalidatePaymentMethods(ctx, customerID)

	s.log.WithFields(logrus.Fields{"customer_id": customerID, "payment_method_id": paymentMethodID}).Info("payment method detached")
	return nil
}

// SetupIntent prepares a card to be saved for off-session use.
func (s *AccountService) SetupIntent(ctx context.Context, identity *models.Identity) (*models.ClientSecretResponse, error) {
	customerID, err := s.customerID(ctx, identity)
	if err != nil {
		return nil, err
	}

	secret, err := s.processor.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return nil, processorError("Failed to create setup intent", err)
	}
	return &models.ClientSecretResponse{ClientSecret: secret}, nil
}

// PaymentHistory returns the caller's most recent ledger rows with property details.
func (s *AccountService) PaymentHistory(ctx context.Context, identity *models.Identity) ([]*models.Payment, error) {
	if _, err := s.customerID(ctx, identity); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListForTenant(ctx, identity.ID, paymentHistoryLimit)
	if err != nil {
		return nil, apperr.Internal("Failed to load payment history", err)
	}
	return payments, nil
}

// Receipt renders a PDF for one of the caller's completed payments.
func (s *AccountService) Receipt(ctx context.Context, identity *models.Identity, paymentID string) ([]byte, error) {
	if _, err := s.customerID(ctx, identity); err != nil {
		return nil, err
	}
	if !validID(paymentID) {
		return nil, apperr.NotFound("Payment not found")
	}

	payment, err := s.payments.GetForTenant(ctx, paymentID, identity.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load payment", err)
	}
	if payment.Status != models.PaymentCompleted {
		return nil, apperr.NotFound("Payment not found")
	}

	pdf, err := s.receipts.Render(payment, identity)
	if err != nil {
		return nil, apperr.Internal("Failed to render receipt", err)
	}
	return pdf, nil
}
