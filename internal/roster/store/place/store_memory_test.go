package place

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/pkg/platform/sentinel"
)

func TestInMemoryPlaces(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	zona, err := s.Create(ctx, "Zona 1")
	require.NoError(t, err)
	_, err = s.Create(ctx, "Amatitlan")
	require.NoError(t, err)

	_, err = s.Create(ctx, "zona 1")
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amatitlan", all[0].Name)

	got, err := s.FindByID(ctx, zona.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zona 1", got.Name)

	_, err = s.FindByID(ctx, 42)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
