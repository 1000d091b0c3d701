// Package processor talks to the Stripe API on behalf of the payment services.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
)

// Stripe implements services.PaymentProcessor.
type Stripe struct {
	api *client.API
	log *logrus.Entry
}

// NewStripe builds a client for secretKey. baseURL overrides the API host and
// is empty outside tests.
func NewStripe(secretKey, baseURL string) *Stripe {
	log := logrus.WithField("component", "stripe")

	apiConfig := &stripe.BackendConfig{
		LeveledLogger:     log,
		MaxNetworkRetries: stripe.Int64(2),
	}
	if baseURL != "" {
		apiConfig.URL = stripe.String(baseURL)
		apiConfig.MaxNetworkRetries = stripe.Int64(0)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, apiConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, &stripe.BackendConfig{LeveledLogger: log}),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, &stripe.BackendConfig{LeveledLogger: log}),
	}

	return &Stripe{api: client.New(secretKey, backends), log: log}
}

func (s *Stripe) CreateCustomer(ctx context.Context, p models.CustomerParams) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(p.Email)}
	params.Context = ctx
	params.AddMetadata("supabase_user_id", p.UserID)
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", convert("create customer", err)
	}
	return c.ID, nil
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, p models.PaymentIntentParams) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		Customer: stripe.String(p.CustomerID),
	}
	params.Context = ctx
	params.AddMetadata("tenant_id", p.TenantID)
	params.AddMetadata("property_id", p.PropertyID)
	if p.SetupFutureUsage {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, convert("create payment intent", err)
	}
	return &models.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) ListCardPaymentMethods(ctx context.Context, customerID string) ([]models.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	methods := []models.PaymentMethod{}
	iter := s.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		m := models.PaymentMethod{ID: pm.ID}
		if pm.Card != nil {
			m.Brand = string(pm.Card.Brand)
			m.Last4 = pm.Card.Last4
			m.ExpMonth = pm.Card.ExpMonth
			m.ExpYear = pm.Card.ExpYear
		}
		methods = append(methods, m)
	}
	if err := iter.Err(); err != nil {
		return nil, convert("list payment methods", err)
	}
	return methods, nil
}

// PaymentMethodCustomer returns "" for unknown or unattached methods.
func (s *Stripe) PaymentMethodCustomer(ctx context.Context, paymentMethodID string) (string, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := s.api.PaymentMethods.Get(paymentMethodID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Code == stripe.ErrorCodeResourceMissing {
			return "", nil
		}
		return "", convert("get payment method", err)
	}
	if pm.Customer == nil {
		return "", nil
	}
	return pm.Customer.ID, nil
}

func (s *Stripe) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := s.api.PaymentMethods.Detach(paymentMethodID, params); err != nil {
		return convert("detach payment method", err)
	}
	return nil
}

func (s *Stripe) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{string(stripe.PaymentMethodTypeCard)}),
		Usage:              stripe.String(string(stripe.SetupIntentUsageOffSession)),
	}
	params.Context = ctx

	si, err := s.api.SetupIntents.New(params)
	if err != nil {
		return "", convert("create setup intent", err)
	}
	return si.ClientSecret, nil
}

// convert surfaces card and request errors to the caller and wraps the rest.
func convert(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch se.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return apperr.InvalidRequest(se.Msg)
		}
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}
