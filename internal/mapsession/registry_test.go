package mapsession

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-map/internal/area/areatest"
	"github.com/sells-group/district-map/internal/engine"
	"github.com/sells-group/district-map/internal/viewport"
)

func memoryFactory() engine.Engine { return engine.NewMemory() }

func TestRegistry_CreateGetClose(t *testing.T) {
	r := NewRegistry(areatest.Dataset(), memoryFactory, DefaultOptions(), 0)

	s, err := r.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.True(t, r.Close(s.ID()))
	assert.False(t, r.Close(s.ID()))
	assert.Equal(t, StatusClosed, s.Status())
	_, ok = r.Get(s.ID())
	assert.False(t, ok)
}

func TestRegistry_UniqueIDs(t *testing.T) {
	r := NewRegistry(areatest.Dataset(), memoryFactory, DefaultOptions(), 0)
	defer r.CloseAll()

	a, err := r.Create(context.Background())
	require.NoError(t, err)
	b, err := r.Create(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRegistry_Max(t *testing.T) {
	r := NewRegistry(areatest.Dataset(), memoryFactory, DefaultOptions(), 1)
	defer r.CloseAll()

	_, err := r.Create(context.Background())
	require.NoError(t, err)
	_, err = r.Create(context.Background())
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestRegistry_EngineFailureNotRegistered(t *testing.T) {
	factory := func() engine.Engine {
		return engine.NewMemory(engine.WithLoadError(errors.New("offline")))
	}
	r := NewRegistry(areatest.Dataset(), factory, DefaultOptions(), 0)

	s, err := r.Create(context.Background())
	assert.ErrorIs(t, err, viewport.ErrUnavailable)
	require.NotNil(t, s)
	assert.Equal(t, StatusUnavailable, s.Status())
	assert.Zero(t, r.Len())
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry(areatest.Dataset(), memoryFactory, DefaultOptions(), 0)

	a, err := r.Create(context.Background())
	require.NoError(t, err)
	b, err := r.Create(context.Background())
	require.NoError(t, err)

	r.CloseAll()
	assert.Zero(t, r.Len())
	assert.Equal(t, StatusClosed, a.Status())
	assert.Equal(t, StatusClosed, b.Status())
}
