package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentpay-backend/internal/models"
)

const tenancyColumns = `id, tenant_id, property_id, start_date::text, end_date::text, is_active, created_at`

// TenancyRepository reads and writes tenant_properties.
type TenancyRepository struct {
	DB *pgxpool.Pool
}

func NewTenancyRepository(db *pgxpool.Pool) *TenancyRepository {
	return &TenancyRepository{DB: db}
}

func scanTenancy(row interface{ Scan(...any) error }) (*models.Tenancy, error) {
	t := &models.Tenancy{}
	err := row.Scan(&t.ID, &t.TenantID, &t.PropertyID, &t.StartDate, &t.EndDate, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// ListActiveForTenant returns the tenant's active tenancies with the property joined.
func (r *TenancyRepository) ListActiveForTenant(ctx context.Context, tenantID string) ([]*models.Tenancy, error) {
	query := `
		SELECT tp.id, tp.tenant_id, tp.property_id, tp.start_date::text, tp.end_date::text, tp.is_active, tp.created_at,
		       p.id, p.landlord_id, p.title, p.address, p.monthly_rent, p.created_at, p.updated_at
		FROM tenant_properties tp
		JOIN properties p ON p.id = tp.property_id
		WHERE tp.tenant_id = $1 AND tp.is_active
		ORDER BY tp.created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenancies := []*models.Tenancy{}
	for rows.Next() {
		t := &models.Tenancy{Property: &models.Property{}}
		p := t.Property
		err := rows.Scan(
			&t.ID, &t.TenantID, &t.PropertyID, &t.StartDate, &t.EndDate, &t.IsActive, &t.CreatedAt,
			&p.ID, &p.LandlordID, &p.Title, &p.Address, &p.MonthlyRent, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tenancies = append(tenancies, t)
	}
	return tenancies, rows.Err()
}

// HasActive reports whether an active tenancy links the tenant to the property.
func (r *TenancyRepository) HasActive(ctx context.Context, tenantID, propertyID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tenant_properties
			WHERE tenant_id = $1 AND property_id = $2 AND is_active
		)
	`, tenantID, propertyID).Scan(&exists)
	return exists, err
}

// Create inserts a tenancy. A second active tenancy for the same pair returns models.ErrDuplicate.
func (r *TenancyRepository) Create(ctx context.Context, t *models.Tenancy) error {
	query := `
		INSERT INTO tenant_properties (tenant_id, property_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3::date, $4::date, TRUE)
		RETURNING ` + tenancyColumns
	created, err := scanTenancy(r.DB.QueryRow(ctx, query, t.TenantID, t.PropertyID, t.StartDate, t.EndDate))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (r *TenancyRepository) Get(ctx context.Context, id string) (*models.Tenancy, error) {
	query := `SELECT ` + tenancyColumns + ` FROM tenant_properties WHERE id = $1`
	return scanTenancy(r.DB.QueryRow(ctx, query, id))
}

// Deactivate clears the active flag. Tenant and property never change.
func (r *TenancyRepository) Deactivate(ctx context.Context, id string) (*models.Tenancy, error) {
	query := `
		UPDATE tenant_properties
		SET is_active = FALSE
		WHERE id = $1
		RETURNING ` + tenancyColumns
	return scanTenancy(r.DB.QueryRow(ctx, query, id))
}
