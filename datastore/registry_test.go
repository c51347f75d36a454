package datastore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAllSkipsFailures(t *testing.T) {
	reg, err := OpenAll(context.Background(), []Config{
		{Name: "Good", Driver: "sqlite", DSN: ":memory:"},
		{Name: "Bad", Driver: "mystery", DSN: "x"},
	})
	t.Cleanup(func() { _ = reg.Close() })

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
	assert.Equal(t, []string{"Good"}, reg.Names())

	ds, err := reg.Get("good")
	require.NoError(t, err)
	assert.Equal(t, "Good", ds.Name())

	_, err = reg.Get("Bad")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryAddReplacesAndClose(t *testing.T) {
	ctx := context.Background()
	first, err := Open(ctx, Config{Name: "db", Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	second, err := Open(ctx, Config{Name: "DB", Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Add(first)
	reg.Add(second)

	got, err := reg.Get("db")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Error(t, first.DB().Ping(), "replaced store should be closed")

	require.NoError(t, reg.Close())
	assert.Empty(t, reg.Names())
}
