package history

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/util"
)

// Service manages the per-owner search history.
type Service interface {
	Add(ctx context.Context, owner string, req AddRequest) ([]Entry, error)
	Remove(ctx context.Context, owner, id string) ([]Entry, error)
	Clear(ctx context.Context, owner string) error
	Relevant(ctx context.Context, owner, query string) ([]Entry, error)
}

type service struct {
	store  Store
	logger *slog.Logger
	now    util.Clock
	newID  func() string

	locksMu sync.Mutex
	locks   map[string]*ownerLock
}

// ownerLock serializes writes for one owner. It is dropped from the map
// once no caller holds or waits on it.
type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// NewService wires the history domain on top of a Store.
func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With("component", "history.service"),
		now:    util.NowUTC,
		newID:  newEntryID,
		locks:  make(map[string]*ownerLock),
	}
}

func (s *service) Add(ctx context.Context, owner string, req AddRequest) ([]Entry, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	unlock := s.lock(owner)
	defer unlock()

	current, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return current, nil
	}

	entry := Entry{
		ID:           s.newID(),
		Query:        query,
		Timestamp:    s.now.UnixMilli(),
		SelectedItem: req.SelectedItem,
	}
	next := compact(append([]Entry{entry}, current...))
	if err := s.save(ctx, owner, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *service) Remove(ctx context.Context, owner, id string) ([]Entry, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	unlock := s.lock(owner)
	defer unlock()

	current, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	next := make([]Entry, 0, len(current))
	for _, entry := range current {
		if entry.ID != id {
			next = append(next, entry)
		}
	}
	if err := s.save(ctx, owner, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *service) Clear(ctx context.Context, owner string) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	unlock := s.lock(owner)
	defer unlock()
	return s.save(ctx, owner, []Entry{})
}

func (s *service) Relevant(ctx context.Context, owner, query string) ([]Entry, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return filterRelevant(current, query), nil
}

// filterRelevant keeps entries whose query contains the input or is
// contained by it, ignoring case.
func filterRelevant(entries []Entry, query string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		stored := strings.ToLower(strings.TrimSpace(entry.Query))
		if strings.Contains(stored, needle) || strings.Contains(needle, stored) {
			out = append(out, entry)
		}
	}
	return out
}

func (s *service) load(ctx context.Context, owner string) ([]Entry, error) {
	raw, ok, err := s.store.Load(ctx, OwnerKey(owner))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load search history", err)
	}
	if !ok {
		return []Entry{}, nil
	}
	return compact(decodeEntries(raw)), nil
}

func (s *service) save(ctx context.Context, owner string, entries []Entry) error {
	payload, err := encodeEntries(entries)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to encode search history", err)
	}
	if err := s.store.Save(ctx, OwnerKey(owner), payload); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to persist search history", err)
	}
	s.logger.Debug("search history saved", "owner", owner, "entries", len(entries))
	return nil
}

func (s *service) lock(owner string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &ownerLock{}
		s.locks[owner] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, owner)
		}
		s.locksMu.Unlock()
	}
}

func (s *service) heldLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "history owner is required", nil)
	}
	return nil
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return id.String()
}
