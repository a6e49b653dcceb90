package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	require.Equal(t, 2, p.CurrentPage)
	require.Equal(t, 4, p.TotalPages)
	require.Equal(t, 35, p.TotalItems)
	require.Equal(t, 10, p.ItemsPerPage)
	require.True(t, p.HasNextPage)
	require.True(t, p.HasPrevPage)
	require.Equal(t, 10, p.Offset())
}

func TestNewPaginationEdges(t *testing.T) {
	first := NewPagination(1, 10, 5)
	require.Equal(t, 1, first.TotalPages)
	require.False(t, first.HasNextPage)
	require.False(t, first.HasPrevPage)

	empty := NewPagination(1, 10, 0)
	require.Equal(t, 0, empty.TotalPages)
	require.False(t, empty.HasNextPage)

	defaulted := NewPagination(0, 0, 100)
	require.Equal(t, 1, defaulted.CurrentPage)
	require.Equal(t, 10, defaulted.ItemsPerPage)
	require.Equal(t, 0, defaulted.Offset())
}
