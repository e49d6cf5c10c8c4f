package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

func newTestService(store Store) *service {
	svc := NewService(store, logger.Discard()).(*service)
	tick := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("h-%d", seq)
	}
	return svc
}

func TestAddPrependsAndPersists(t *testing.T) {
	store := newMapStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddRequest{Query: "강남역"})
	require.NoError(t, err)
	item := &search.Item{ID: "sub-1", Name: "서울역", Category: search.CategorySubway}
	entries, err := svc.Add(ctx, "u1", AddRequest{Query: "  서울역 ", SelectedItem: item})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	require.Equal(t, "서울역", entries[0].Query)
	require.Equal(t, "sub-1", entries[0].SelectedItem.ID)
	require.Equal(t, "강남역", entries[1].Query)
	require.Greater(t, entries[0].Timestamp, entries[1].Timestamp)

	reloaded, err := svc.Relevant(ctx, "u1", "")
	require.NoError(t, err)
	require.Equal(t, entries, reloaded)
}

func TestAddBlankQueryIsNoop(t *testing.T) {
	store := newMapStore()
	svc := newTestService(store)

	entries, err := svc.Add(context.Background(), "u1", AddRequest{Query: "   "})
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, store.saves)
}

func TestAddDuplicateMovesToFront(t *testing.T) {
	svc := newTestService(newMapStore())
	ctx := context.Background()

	for _, q := range []string{"Hangang", "Seoul Forest", "Namsan"} {
		_, err := svc.Add(ctx, "u1", AddRequest{Query: q})
		require.NoError(t, err)
	}
	entries, err := svc.Add(ctx, "u1", AddRequest{Query: "  hangang "})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	require.Equal(t, "hangang", entries[0].Query)
	require.Equal(t, "Namsan", entries[1].Query)
	require.Equal(t, "Seoul Forest", entries[2].Query)
}

func TestAddCapsAtTenEntries(t *testing.T) {
	svc := newTestService(newMapStore())
	ctx := context.Background()

	for i := 1; i <= MaxEntries; i++ {
		_, err := svc.Add(ctx, "u1", AddRequest{Query: fmt.Sprintf("query-%d", i)})
		require.NoError(t, err)
	}
	entries, err := svc.Add(ctx, "u1", AddRequest{Query: "query-11"})
	require.NoError(t, err)

	require.Len(t, entries, MaxEntries)
	require.Equal(t, "query-11", entries[0].Query)
	for _, e := range entries {
		require.NotEqual(t, "query-1", e.Query)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc := newTestService(newMapStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddRequest{Query: "a"})
	require.NoError(t, err)
	entries, err := svc.Add(ctx, "u1", AddRequest{Query: "b"})
	require.NoError(t, err)

	entries, err = svc.Remove(ctx, "u1", entries[1].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b", entries[0].Query)

	require.NoError(t, svc.Clear(ctx, "u1"))
	entries, err = svc.Relevant(ctx, "u1", "")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestOwnersAreIsolated(t *testing.T) {
	svc := newTestService(newMapStore())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddRequest{Query: "a"})
	require.NoError(t, err)
	entries, err := svc.Relevant(ctx, "u2", "")
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = svc.Relevant(ctx, " ", "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestOwnerLocksAreReleased(t *testing.T) {
	svc := newTestService(newMapStore())
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		owner := fmt.Sprintf("anon:c%d", i%20)
		_, err := svc.Add(ctx, owner, AddRequest{Query: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
	}
	_, err := svc.Remove(ctx, "anon:c1", "missing")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "anon:c2"))
	require.Zero(t, svc.heldLocks())

	unlock := svc.lock("anon:c4")
	require.Equal(t, 1, svc.heldLocks())
	unlock()
	require.Zero(t, svc.heldLocks())

	entries, err := svc.Relevant(ctx, "anon:c3", "")
	require.NoError(t, err)
	require.Len(t, entries, 10)
}

func TestRelevantIsBidirectional(t *testing.T) {
	entries := []Entry{
		{ID: "1", Query: "강남역 맛집", Timestamp: 3},
		{ID: "2", Query: "강남", Timestamp: 2},
		{ID: "3", Query: "Seoul Forest", Timestamp: 1},
	}

	got := filterRelevant(entries, "강남역")
	require.Equal(t, []string{"1", "2"}, ids(got))

	got = filterRelevant(entries, "seoul")
	require.Equal(t, []string{"3"}, ids(got))

	require.Equal(t, entries, filterRelevant(entries, "  "))
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	store := newMapStore()
	store.data[OwnerKey("u1")] = []byte(`[
		{"id":"ok","query":"강남","timestamp":20},
		{"id":1,"query":"bad id","timestamp":10},
		{"id":"x","timestamp":10},
		{"id":"y","query":"bad ts","timestamp":"yesterday"},
		"garbage",
		{"id":"z","query":"with item","timestamp":10,"selectedItem":{"id":"sub-1","name":"강남역","category":"subway"}}
	]`)
	store.data[OwnerKey("u2")] = []byte(`{"not":"an array"}`)
	store.data[OwnerKey("u3")] = []byte(`not json`)
	svc := newTestService(store)
	ctx := context.Background()

	entries, err := svc.Relevant(ctx, "u1", "")
	require.NoError(t, err)
	require.Equal(t, []string{"ok", "z"}, ids(entries))
	require.Equal(t, "강남역", entries[1].SelectedItem.Name)

	for _, owner := range []string{"u2", "u3"} {
		entries, err = svc.Relevant(ctx, owner, "")
		require.NoError(t, err)
		require.Empty(t, entries)
	}
}

func TestStoreFailureIsWrapped(t *testing.T) {
	store := newMapStore()
	store.err = errors.New("disk full")
	svc := newTestService(store)

	_, err := svc.Add(context.Background(), "u1", AddRequest{Query: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

type mapStore struct {
	data  map[string][]byte
	saves int
	err   error
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (m *mapStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	raw, ok := m.data[key]
	return raw, ok, nil
}

func (m *mapStore) Save(_ context.Context, key string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.data[key] = payload
	return nil
}
