package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"rentpay-backend/internal/models"
)

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(pgx.ErrNoRows), models.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), models.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "tenant_properties_active_key"}
	assert.ErrorIs(t, translate(dup), models.ErrDuplicate)

	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, fk, translate(fk))

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}
