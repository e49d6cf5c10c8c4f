package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/util"
)

// Store persists one preference blob per key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// Service reads and flips owner preferences.
type Service interface {
	Get(ctx context.Context, owner string) (Preferences, error)
	Toggle(ctx context.Context, owner, key string) (Preferences, error)
}

type service struct {
	store  Store
	logger *slog.Logger
	now    util.Clock
	mu     sync.Mutex
}

// NewService builds the preference service.
func NewService(store Store, logger *slog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With("component", "preference.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Get(ctx context.Context, owner string) (Preferences, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInvalidInput, "owner is required", nil)
	}
	return s.load(ctx, owner)
}

func (s *service) Toggle(ctx context.Context, owner, key string) (Preferences, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInvalidInput, "owner is required", nil)
	}
	key = strings.ToLower(strings.TrimSpace(key))

	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.load(ctx, owner)
	if err != nil {
		return Preferences{}, err
	}
	switch {
	case key == PushKey:
		prefs.PushEnabled = !prefs.PushEnabled
	case search.Category(key).Known():
		cat := search.Category(key)
		prefs.Categories[cat] = !prefs.Enabled(cat)
	default:
		return Preferences{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown preference %q", key), nil)
	}
	prefs.UpdatedAt = s.now()

	payload, err := json.Marshal(prefs)
	if err != nil {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInternal, "failed to encode preferences", err)
	}
	if err := s.store.Save(ctx, storageKey(owner), payload); err != nil {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInternal, "failed to save preferences", err)
	}
	s.logger.Debug("preference toggled", "owner", owner, "key", key)
	return prefs, nil
}

func (s *service) load(ctx context.Context, owner string) (Preferences, error) {
	prefs := Defaults()
	payload, ok, err := s.store.Load(ctx, storageKey(owner))
	if err != nil {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load preferences", err)
	}
	if !ok {
		return prefs, nil
	}
	var stored Preferences
	if err := json.Unmarshal(payload, &stored); err != nil {
		s.logger.Warn("discarding unreadable preferences", "owner", owner, "error", err)
		return prefs, nil
	}
	for cat, on := range stored.Categories {
		if cat.Known() {
			prefs.Categories[cat] = on
		}
	}
	prefs.PushEnabled = stored.PushEnabled
	prefs.UpdatedAt = stored.UpdatedAt
	return prefs, nil
}

func storageKey(owner string) string {
	return StoragePrefix + ":" + owner
}
