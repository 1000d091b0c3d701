package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentpay-backend/internal/models"
)

const profileColumns = `id, user_type, full_name, stripe_customer_id, created_at, updated_at`

// ProfileRepository reads and writes the profiles table.
type ProfileRepository struct {
	DB *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.UserType, &p.FullName, &p.StripeCustomerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.DB.QueryRow(ctx, query, id))
}

// Create inserts a profile unless one already exists, then returns the stored row.
func (r *ProfileRepository) Create(ctx context.Context, id, userType string) (*models.Profile, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO profiles (id, user_type)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, userType)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update applies the non-nil fields and bumps updated_at.
func (r *ProfileRepository) Update(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    user_type = COALESCE($3, user_type),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.DB.QueryRow(ctx, query, id, req.FullName, req.UserType))
}

// SetStripeCustomerID stores customerID only if the profile has none yet.
// It reports false when another writer got there first.
func (r *ProfileRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE profiles
		SET stripe_customer_id = $2, updated_at = NOW()
		WHERE id = $1 AND stripe_customer_id IS NULL
	`, id, customerID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
