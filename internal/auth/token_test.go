package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/shared"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	tokens := NewTokens("unit-test-secret", time.Hour)

	raw, err := tokens.Issue(&User{ID: 42, Email: "kari@example.com", Role: shared.RoleCustomer})
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "kari@example.com", claims.Email)
	require.Equal(t, shared.RoleCustomer, claims.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens := &Tokens{secret: []byte("unit-test-secret"), ttl: -time.Minute}

	raw, err := tokens.Issue(&User{ID: 1, Email: "kari@example.com"})
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	require.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestParseRejectsForeignSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Issue(&User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Parse(raw)
	require.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Parse("not.a.token")
	require.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestExtractBearer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	require.Empty(t, ExtractBearer(r))

	r.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", ExtractBearer(r))

	r.Header.Set("Authorization", "Basic abc123")
	require.Empty(t, ExtractBearer(r))
}
