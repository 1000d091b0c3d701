package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentpay-backend/internal/models"
)

const propertyColumns = `id, landlord_id, title, address, monthly_rent, created_at, updated_at`

type PropertyRepository struct {
	DB *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

func scanProperty(row interface{ Scan(...any) error }) (*models.Property, error) {
	p := &models.Property{}
	err := row.Scan(&p.ID, &p.LandlordID, &p.Title, &p.Address, &p.MonthlyRent, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// ListByLandlord returns the landlord's properties, newest first.
func (r *PropertyRepository) ListByLandlord(ctx context.Context, landlordID string) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE landlord_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *PropertyRepository) Get(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(r.DB.QueryRow(ctx, query, id))
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (landlord_id, title, address, monthly_rent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(ctx, query, p.LandlordID, p.Title, p.Address, p.MonthlyRent).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update changes an owned property. A property owned by someone else is reported as not found.
func (r *PropertyRepository) Update(ctx context.Context, id, landlordID string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	query := `
		UPDATE properties
		SET title = COALESCE($3, title),
		    address = COALESCE($4, address),
		    monthly_rent = COALESCE($5, monthly_rent),
		    updated_at = NOW()
		WHERE id = $1 AND landlord_id = $2
		RETURNING ` + propertyColumns
	return scanProperty(r.DB.QueryRow(ctx, query, id, landlordID, req.Title, req.Address, req.MonthlyRent))
}

// Delete removes an owned property and reports whether a row was deleted.
func (r *PropertyRepository) Delete(ctx context.Context, id, landlordID string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND landlord_id = $2`, id, landlordID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
