package models

import "time"

// Ledger statuses.
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment is an immutable ledger row written from a processor event.
type Payment struct {
	ID                    string           `json:"id"`
	TenantID              string           `json:"tenant_id"`
	PropertyID            string           `json:"property_id"`
	Amount                float64          `json:"amount"`
	StripePaymentIntentID string           `json:"stripe_payment_intent_id"`
	StripeEventID         *string          `json:"stripe_event_id,omitempty"`
	Status                string           `json:"status"`
	PaymentMethodLast4    *string          `json:"payment_method_last4"`
	PaymentDate           time.Time        `json:"payment_date"`
	CreatedAt             time.Time        `json:"created_at"`
	Property              *PropertySummary `json:"properties,omitempty"`
}

type CreatePaymentIntentRequest struct {
	Amount     int64  `json:"amount" validate:"gt=0"`
	PropertyID string `json:"propertyId" validate:"required,uuid"`
	SaveCard   bool   `json:"saveCard"`
}

type ClientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CustomerParams describes a processor customer to create for a profile.
type CustomerParams struct {
	UserID         string
	Email          string
	IdempotencyKey string
}

// PaymentIntentParams describes a card payment to open with the processor.
type PaymentIntentParams struct {
	Amount           int64
	Currency         string
	CustomerID       string
	TenantID         string
	PropertyID       string
	SetupFutureUsage bool
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentMethod is the card summary shown to the owner of a saved method.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// PaymentEvent is fanned out to subscribers after a ledger row is written.
type PaymentEvent struct {
	Type       string    `json:"type"`
	PaymentID  string    `json:"payment_id"`
	TenantID   string    `json:"tenant_id"`
	PropertyID string    `json:"property_id"`
	LandlordID string    `json:"landlord_id,omitempty"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PaymentEventRecorded is the type of PaymentEvent messages.
const PaymentEventRecorded = "payment.recorded"
