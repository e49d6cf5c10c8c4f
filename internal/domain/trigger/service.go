package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/util"
)

// NearbyFinder loads facilities around a point.
type NearbyFinder interface {
	Nearby(ctx context.Context, q facility.NearbyQuery) (facility.Snapshot, error)
}

// PreferenceReader exposes an owner's notification settings.
type PreferenceReader interface {
	Get(ctx context.Context, owner string) (preference.Preferences, error)
}

// Inbox stores notifications per owner.
type Inbox interface {
	Add(ctx context.Context, n Notification) error
	List(ctx context.Context, owner string, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, owner string) (int, error)
	MarkRead(ctx context.Context, owner, id string) (Notification, bool, error)
}

// Service evaluates location triggers and serves the notification inbox.
type Service interface {
	Evaluate(ctx context.Context, job Job) ([]Notification, error)
	HandleJob(ctx context.Context, name string, payload map[string]any)
	List(ctx context.Context, owner string, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, owner string) (int, error)
	MarkRead(ctx context.Context, owner, id string) (Notification, error)
}

type service struct {
	cfg    Config
	nearby NearbyFinder
	prefs  PreferenceReader
	inbox  Inbox
	logger *slog.Logger
	now    util.Clock
	newID  func() string

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewService wires trigger evaluation.
func NewService(cfg Config, nearby NearbyFinder, prefs PreferenceReader, inbox Inbox, logger *slog.Logger) Service {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = 0.5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Minute
	}
	if cfg.MaxPerEvaluation <= 0 {
		cfg.MaxPerEvaluation = 3
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = []search.Category{search.CategoryCoolingCenter}
	}
	return &service{
		cfg:      cfg,
		nearby:   nearby,
		prefs:    prefs,
		inbox:    inbox,
		logger:   logger.With("component", "trigger.service"),
		now:      util.NowUTC,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		lastSent: make(map[string]time.Time),
	}
}

func (s *service) HandleJob(ctx context.Context, name string, payload map[string]any) {
	if name != JobName {
		return
	}
	job, ok := decodeJob(payload)
	if !ok {
		s.logger.Warn("dropping malformed trigger job", "payload", payload)
		return
	}
	created, err := s.Evaluate(ctx, job)
	if err != nil {
		s.logger.Warn("trigger evaluation failed", "owner", job.Owner, "error", err)
		return
	}
	if len(created) > 0 {
		s.logger.Info("location triggers fired", "owner", job.Owner, "count", len(created))
	}
}

func (s *service) Evaluate(ctx context.Context, job Job) ([]Notification, error) {
	if strings.TrimSpace(job.Owner) == "" || !job.Position.Valid() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "trigger job needs an owner and a valid position", nil)
	}
	prefs, err := s.prefs.Get(ctx, job.Owner)
	if err != nil {
		return nil, err
	}
	if !prefs.PushEnabled {
		return nil, nil
	}
	categories := make([]search.Category, 0, len(s.cfg.Categories))
	for _, cat := range s.cfg.Categories {
		if prefs.Enabled(cat) {
			categories = append(categories, cat)
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}

	snap, err := s.nearby.Nearby(ctx, facility.NearbyQuery{Center: job.Position, RadiusKm: s.cfg.RadiusKm, Categories: categories})
	if err != nil {
		return nil, err
	}
	candidates := flatten(snap)

	now := s.now()
	created := make([]Notification, 0, s.cfg.MaxPerEvaluation)
	for _, f := range candidates {
		if len(created) >= s.cfg.MaxPerEvaluation {
			break
		}
		if !s.claim(job.Owner, f.ID, now) {
			continue
		}
		n := s.notificationFor(job.Owner, f, now)
		if err := s.inbox.Add(ctx, n); err != nil {
			return created, apperrors.Wrap(apperrors.CodeInternal, "failed to store notification", err)
		}
		created = append(created, n)
	}
	return created, nil
}

func (s *service) List(ctx context.Context, owner string, limit int) ([]Notification, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "owner is required", nil)
	}
	if limit <= 0 {
		limit = 20
	}
	items, err := s.inbox.List(ctx, owner, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list notifications", err)
	}
	return items, nil
}

func (s *service) UnreadCount(ctx context.Context, owner string) (int, error) {
	if strings.TrimSpace(owner) == "" {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "owner is required", nil)
	}
	n, err := s.inbox.UnreadCount(ctx, owner)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, "failed to count notifications", err)
	}
	return n, nil
}

func (s *service) MarkRead(ctx context.Context, owner, id string) (Notification, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(id) == "" {
		return Notification{}, apperrors.Wrap(apperrors.CodeInvalidInput, "owner and id are required", nil)
	}
	n, found, err := s.inbox.MarkRead(ctx, owner, id)
	if err != nil {
		return Notification{}, apperrors.Wrap(apperrors.CodeInternal, "failed to update notification", err)
	}
	if !found {
		return Notification{}, apperrors.Wrap(apperrors.CodeNotFound, "notification not found", nil)
	}
	return n, nil
}

// claim records a send for (owner, facility) unless one happened within
// the cooldown.
func (s *service) claim(owner, facilityID string, now time.Time) bool {
	key := owner + "|" + facilityID
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastSent[key]; ok && now.Sub(last) < s.cfg.Cooldown {
		return false
	}
	for k, t := range s.lastSent {
		if now.Sub(t) >= s.cfg.Cooldown {
			delete(s.lastSent, k)
		}
	}
	s.lastSent[key] = now
	return true
}

func (s *service) notificationFor(owner string, f facility.Facility, now time.Time) Notification {
	pos := f.Position
	n := Notification{
		ID:         s.newID(),
		Owner:      owner,
		FacilityID: f.ID,
		Category:   f.Category,
		Position:   &pos,
		CreatedAt:  now,
	}
	if f.DistanceKm != nil {
		n.DistanceKm = *f.DistanceKm
	}
	switch f.Category {
	case search.CategoryCoolingCenter:
		n.Title = "근처 무더위 쉼터"
	default:
		n.Title = "근처 시설 알림"
	}
	n.Body = fmt.Sprintf("%s까지 약 %dm", f.Name, int(math.Round(n.DistanceKm*1000)))
	return n
}

// flatten returns every facility in the snapshot, nearest first.
func flatten(snap facility.Snapshot) []facility.Facility {
	out := make([]facility.Facility, 0, snap.Total)
	out = append(out, snap.Singles...)
	for _, c := range snap.Clusters {
		out = append(out, c.Facilities...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(out[i]) < distance(out[j])
	})
	return out
}

func distance(f facility.Facility) float64 {
	if f.DistanceKm == nil {
		return math.Inf(1)
	}
	return *f.DistanceKm
}
