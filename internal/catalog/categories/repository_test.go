package categories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/shared"
)

func TestDuplicateNameMapsToDomainError(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "categories_name_key"}

	err := mapDuplicateName(fmt.Errorf("insert: %w", unique))
	require.True(t, errors.Is(err, shared.ErrDuplicateCategory))

	other := errors.New("connection reset")
	require.Equal(t, other, mapDuplicateName(other))
}
