package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

func TestServiceLoadsIndexOnce(t *testing.T) {
	src := &stubSource{items: []Item{
		{ID: "1", Name: "강남역", Category: CategorySubway},
		{ID: "1", Name: "duplicate", Category: CategorySubway},
		{ID: "", Name: "no id"},
	}}
	svc := NewService(Config{DefaultLimit: 10, MaxLimit: 50}, src, logger.Discard())

	resp, err := svc.Search(context.Background(), Request{Query: "강남"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 1, resp.Indexed)

	_, err = svc.Search(context.Background(), Request{Query: "역"})
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	n, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 2, src.calls)
}

func TestServiceBlankQuerySkipsLoad(t *testing.T) {
	src := &stubSource{}
	svc := NewService(Config{}, src, logger.Discard())

	resp, err := svc.Search(context.Background(), Request{Query: "  "})
	require.NoError(t, err)
	require.Empty(t, resp.Items)
	require.Zero(t, src.calls)
}

func TestServiceRejectsBadLimit(t *testing.T) {
	svc := NewService(Config{DefaultLimit: 10, MaxLimit: 50}, &stubSource{}, logger.Discard())

	_, err := svc.Search(context.Background(), Request{Query: "a", Limit: 51})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Search(context.Background(), Request{Query: "a", Limit: -1})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceSourceFailure(t *testing.T) {
	svc := NewService(Config{}, &stubSource{err: errors.New("db down")}, logger.Discard())

	_, err := svc.Search(context.Background(), Request{Query: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
}

type stubSource struct {
	items []Item
	err   error
	calls int
}

func (s *stubSource) LoadItems(context.Context) ([]Item, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}
