package searchrepo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

func TestSeedItemsAreSearchable(t *testing.T) {
	items := SeedItems()
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		require.NotEmpty(t, item.Name)
		require.True(t, item.Category.Known(), item.ID)
		_, dup := seen[item.ID]
		require.False(t, dup, item.ID)
		seen[item.ID] = struct{}{}
	}

	idx := search.NewIndex(items)
	got := idx.Search("강남", 3)
	require.NotEmpty(t, got)
	require.Equal(t, "강남역", got[0].Name)
}

func TestMemorySourceReturnsCopies(t *testing.T) {
	src := NewMemorySource([]search.Item{{ID: "a", Name: "서울숲", Category: search.CategoryPark}})
	items, err := src.LoadItems(context.Background())
	require.NoError(t, err)
	items[0].Name = "changed"

	again, err := src.LoadItems(context.Background())
	require.NoError(t, err)
	require.Equal(t, "서울숲", again[0].Name)

	src.Replace(nil)
	again, err = src.LoadItems(context.Background())
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestDecodeSnapshot(t *testing.T) {
	items, err := decodeSnapshot(strings.NewReader(`[{"id":"a","name":"서울역","category":"subway","ref_id":133}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(133), *items[0].RefID)

	items, err = decodeSnapshot(strings.NewReader(` {"items":[{"id":"b","name":"남산공원","category":"park"}]}`))
	require.NoError(t, err)
	require.Equal(t, search.CategoryPark, items[0].Category)

	_, err = decodeSnapshot(strings.NewReader(`{"rows":[]}`))
	require.Error(t, err)
	_, err = decodeSnapshot(strings.NewReader("  "))
	require.Error(t, err)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint("https://acct.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
}
