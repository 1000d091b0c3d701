package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentpay-backend/internal/models"
)

// PaymentRepository appends to and reads the payments ledger. There is no update or delete.
type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// Record inserts a ledger row keyed by its processor event id. It reports false,
// without error, when the event was already recorded.
func (r *PaymentRepository) Record(ctx context.Context, p *models.Payment) (bool, error) {
	query := `
		INSERT INTO payments (tenant_id, property_id, amount, stripe_payment_intent_id, stripe_event_id, status, payment_method_last4)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_event_id) DO NOTHING
		RETURNING id, payment_date, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		p.TenantID,
		p.PropertyID,
		p.Amount,
		p.StripePaymentIntentID,
		p.StripeEventID,
		p.Status,
		p.PaymentMethodLast4,
	).Scan(&p.ID, &p.PaymentDate, &p.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const paymentSelect = `
	SELECT pm.id, pm.tenant_id, pm.property_id, pm.amount, pm.stripe_payment_intent_id, pm.status,
	       pm.payment_method_last4, pm.payment_date, pm.created_at, pr.title, pr.address
	FROM payments pm
	LEFT JOIN properties pr ON pr.id = pm.property_id
`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var title, address *string
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.PropertyID,
		&p.Amount,
		&p.StripePaymentIntentID,
		&p.Status,
		&p.PaymentMethodLast4,
		&p.PaymentDate,
		&p.CreatedAt,
		&title,
		&address,
	)
	if err != nil {
		return nil, translate(err)
	}
	// The ledger outlives deleted properties.
	if title != nil && address != nil {
		p.Property = &models.PropertySummary{Title: *title, Address: *address}
	}
	return p, nil
}

// ListForTenant returns the tenant's most recent ledger rows.
func (r *PaymentRepository) ListForTenant(ctx context.Context, tenantID string, limit int) ([]*models.Payment, error) {
	query := paymentSelect + `
		WHERE pm.tenant_id = $1
		ORDER BY pm.payment_date DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetForTenant returns one ledger row if it belongs to the tenant.
func (r *PaymentRepository) GetForTenant(ctx context.Context, id, tenantID string) (*models.Payment, error) {
	query := paymentSelect + `WHERE pm.id = $1 AND pm.tenant_id = $2`
	return scanPayment(r.DB.QueryRow(ctx, query, id, tenantID))
}
