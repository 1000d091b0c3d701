package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentpay-backend/internal/models"
)

// IdentityDirectory looks up users in the identity service's auth.users table,
// which shares the application database.
type IdentityDirectory struct {
	DB *pgxpool.Pool
}

func NewIdentityDirectory(db *pgxpool.Pool) *IdentityDirectory {
	return &IdentityDirectory{DB: db}
}

// FindByEmail matches case-insensitively.
func (d *IdentityDirectory) FindByEmail(ctx context.Context, email string) (*models.DirectoryUser, error) {
	u := &models.DirectoryUser{}
	err := d.DB.QueryRow(ctx, `
		SELECT id, email
		FROM auth.users
		WHERE lower(email) = lower($1)
		LIMIT 1
	`, email).Scan(&u.ID, &u.Email)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}
