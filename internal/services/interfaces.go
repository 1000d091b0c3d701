package services

import (
	"context"

	"rentpay-backend/internal/models"
)

// Stores are satisfied by the pgx repositories. Lookups return models.ErrNotFound on a miss.

type ProfileStore interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, id, userType string) (*models.Profile, error)
	Update(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error)
	SetStripeCustomerID(ctx context.Context, id, customerID string) (bool, error)
}

type PropertyStore interface {
	ListByLandlord(ctx context.Context, landlordID string) ([]*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, id, landlordID string, req *models.UpdatePropertyRequest) (*models.Property, error)
	Delete(ctx context.Context, id, landlordID string) (bool, error)
}

type TenancyStore interface {
	ListActiveForTenant(ctx context.Context, tenantID string) ([]*models.Tenancy, error)
	HasActive(ctx context.Context, tenantID, propertyID string) (bool, error)
	Create(ctx context.Context, t *models.Tenancy) error
	Get(ctx context.Context, id string) (*models.Tenancy, error)
	Deactivate(ctx context.Context, id string) (*models.Tenancy, error)
}

type PaymentStore interface {
	Record(ctx context.Context, p *models.Payment) (bool, error)
	ListForTenant(ctx context.Context, tenantID string, limit int) ([]*models.Payment, error)
	GetForTenant(ctx context.Context, id, tenantID string) (*models.Payment, error)
}

// UserDirectory resolves identity-service users by email.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.DirectoryUser, error)
}

// PaymentProcessor is the slice of the processor API the service uses.
// Card and request errors come back as apperr.InvalidRequest.
type PaymentProcessor interface {
	CreateCustomer(ctx context.Context, params models.CustomerParams) (string, error)
	CreatePaymentIntent(ctx context.Context, params models.PaymentIntentParams) (*models.PaymentIntent, error)
	ListCardPaymentMethods(ctx context.Context, customerID string) ([]models.PaymentMethod, error)
	// PaymentMethodCustomer returns the customer a method is attached to, or "".
	PaymentMethodCustomer(ctx context.Context, paymentMethodID string) (string, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
	CreateSetupIntent(ctx context.Context, customerID string) (string, error)
}

type PaymentMethodCache interface {
	GetPaymentMethods(ctx context.Context, customerID string) ([]models.PaymentMethod, bool)
	SetPaymentMethods(ctx context.Context, customerID string, methods []models.PaymentMethod)
	InvalidatePaymentMethods(ctx context.Context, customerID string)
}

// PaymentNotifier receives every newly recorded ledger row.
type PaymentNotifier interface {
	PaymentRecorded(ctx context.Context, event models.PaymentEvent)
}

// EventArchiver keeps a copy of raw processor events.
type EventArchiver interface {
	Archive(ctx context.Context, eventID, eventType string, payload []byte) error
}
