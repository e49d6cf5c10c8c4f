package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

// Service exposes the ranking pipeline over a lazily loaded index.
type Service interface {
	Search(ctx context.Context, req Request) (Response, error)
	Reload(ctx context.Context) (int, error)
}

type service struct {
	cfg    Config
	source ItemSource
	logger *slog.Logger

	index  atomic.Pointer[Index]
	loadMu sync.Mutex
}

// NewService wires the search domain.
func NewService(cfg Config, source ItemSource, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	return &service{
		cfg:    cfg,
		source: source,
		logger: logger.With("component", "search.service"),
	}
}

func (s *service) Search(ctx context.Context, req Request) (Response, error) {
	limit := req.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit < 0 || limit > s.cfg.MaxLimit {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxLimit), nil)
	}

	query := strings.TrimSpace(req.Query)
	resp := Response{Query: query, Items: []Item{}}
	if query == "" {
		return resp, nil
	}

	ix, err := s.ensureIndex(ctx)
	if err != nil {
		return Response{}, err
	}
	resp.Items = ix.Search(query, limit)
	resp.Total = len(resp.Items)
	resp.Indexed = ix.Len()
	return resp, nil
}

func (s *service) Reload(ctx context.Context) (int, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	ix, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return ix.Len(), nil
}

func (s *service) ensureIndex(ctx context.Context) (*Index, error) {
	if ix := s.index.Load(); ix != nil {
		return ix, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if ix := s.index.Load(); ix != nil {
		return ix, nil
	}
	return s.load(ctx)
}

// load must be called with loadMu held.
func (s *service) load(ctx context.Context) (*Index, error) {
	items, err := s.source.LoadItems(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "failed to load search items", err)
	}
	clean := sanitizeItems(items)
	if dropped := len(items) - len(clean); dropped > 0 {
		s.logger.Warn("search items dropped during load", "dropped", dropped)
	}
	ix := NewIndex(clean)
	s.index.Store(ix)
	s.logger.Info("search index loaded", "items", ix.Len())
	return ix, nil
}

// sanitizeItems drops records without an id or name and keeps the first
// record for each id.
func sanitizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
