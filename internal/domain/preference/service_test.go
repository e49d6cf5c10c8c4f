package preference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

func TestGetReturnsDefaults(t *testing.T) {
	svc := NewService(newMapStore(), logger.Discard())

	prefs, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, prefs.PushEnabled)
	require.Len(t, prefs.Categories, len(search.Categories()))
	for _, cat := range search.Categories() {
		require.True(t, prefs.Enabled(cat), cat)
	}
}

func TestTogglePersists(t *testing.T) {
	store := newMapStore()
	svc := NewService(store, logger.Discard()).(*service)
	fixed := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	prefs, err := svc.Toggle(ctx, "user-1", "Park")
	require.NoError(t, err)
	require.False(t, prefs.Enabled(search.CategoryPark))
	require.Equal(t, fixed, prefs.UpdatedAt)

	prefs, err = svc.Toggle(ctx, "user-1", PushKey)
	require.NoError(t, err)
	require.False(t, prefs.PushEnabled)

	reloaded, err := NewService(store, logger.Discard()).Get(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, reloaded.Enabled(search.CategoryPark))
	require.True(t, reloaded.Enabled(search.CategoryLibrary))
	require.False(t, reloaded.PushEnabled)

	prefs, err = svc.Toggle(ctx, "user-1", "park")
	require.NoError(t, err)
	require.True(t, prefs.Enabled(search.CategoryPark))

	other, err := svc.Get(ctx, "user-2")
	require.NoError(t, err)
	require.True(t, other.PushEnabled)
}

func TestToggleRejectsUnknownKey(t *testing.T) {
	svc := NewService(newMapStore(), logger.Discard())
	_, err := svc.Toggle(context.Background(), "user-1", "museum")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Get(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestCorruptBlobFallsBackToDefaults(t *testing.T) {
	store := newMapStore()
	store.data[storageKey("user-1")] = []byte("{not json")
	svc := NewService(store, logger.Discard())

	prefs, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, Defaults().Categories, prefs.Categories)
}

func TestStoreErrorsSurfaceAsInternal(t *testing.T) {
	store := newMapStore()
	store.err = errors.New("disk full")
	svc := NewService(store, logger.Discard())

	_, err := svc.Toggle(context.Background(), "user-1", PushKey)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

type mapStore struct {
	data map[string][]byte
	err  error
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (m *mapStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Save(_ context.Context, key string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = payload
	return nil
}
