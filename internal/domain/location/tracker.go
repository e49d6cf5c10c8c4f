package location

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
	"github.com/seoulfit/seoulfit-api/pkg/debounce"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/util"
)

const (
	DefaultTriggerThresholdMeters = 100
	DefaultRefetchThresholdMeters = 400
	DefaultIdleTTL                = 30 * time.Minute
)

// SnapshotFetcher loads the facilities around a point. facility.Service
// satisfies it.
type SnapshotFetcher interface {
	Nearby(ctx context.Context, q facility.NearbyQuery) (facility.Snapshot, error)
}

// TriggerPublisher receives a position that moved past the trigger gate.
type TriggerPublisher interface {
	PublishTrigger(ctx context.Context, owner string, p spatial.Point, at time.Time) error
}

// Tracker keeps one location session per owner. Sessions that see no
// update for IdleTTL are torn down on a later Update.
type Tracker struct {
	cfg        Config
	facilities SnapshotFetcher
	triggers   TriggerPublisher
	logger     *slog.Logger
	now        util.Clock

	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
	closed    bool
	wg        sync.WaitGroup
}

type session struct {
	owner       string
	ctx         context.Context
	debouncer   *debounce.Debouncer[Update]
	triggerGate *DistanceGate
	refetchGate *DistanceGate
	epoch       Epoch
	teardown    Teardown
	lastSeen    time.Time // guarded by Tracker.mu

	mu    sync.Mutex
	state State
}

// NewTracker builds a tracker. triggers may be nil when location triggers
// are disabled.
func NewTracker(cfg Config, facilities SnapshotFetcher, triggers TriggerPublisher, logger *slog.Logger) *Tracker {
	if cfg.TriggerThresholdMeters <= 0 {
		cfg.TriggerThresholdMeters = DefaultTriggerThresholdMeters
	}
	if cfg.RefetchThresholdMeters <= 0 {
		cfg.RefetchThresholdMeters = DefaultRefetchThresholdMeters
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Tracker{
		cfg:        cfg,
		facilities: facilities,
		triggers:   triggers,
		logger:     logger.With("component", "location.tracker"),
		now:        util.NowUTC,
		sessions:   make(map[string]*session),
	}
}

// Update feeds a position report into the owner's session. With a
// positive debounce wait the report is held until the burst settles and
// the returned state is marked pending.
func (t *Tracker) Update(ctx context.Context, owner string, u Update) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return State{}, apperrors.Wrap(apperrors.CodeInvalidInput, "owner is required", nil)
	}
	if u.Type == "" {
		u.Type = TypeCurrent
	}
	if u.Type != TypeCurrent && u.Type != TypeSearched {
		return State{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown location type %q", u.Type), nil)
	}
	if !u.Point().Valid() {
		return State{}, apperrors.Wrap(apperrors.CodeInvalidInput, "lat/lng out of range", nil)
	}

	s, err := t.session(owner)
	if err != nil {
		return State{}, err
	}
	if t.cfg.DebounceWait <= 0 {
		t.process(s, u)
	} else {
		s.mu.Lock()
		s.state.Pending = true
		s.mu.Unlock()
		s.debouncer.Trigger(u)
	}
	return s.snapshot(), nil
}

// State returns the owner's current view.
func (t *Tracker) State(owner string) (State, bool) {
	t.mu.Lock()
	s, ok := t.sessions[owner]
	t.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return s.snapshot(), true
}

// Dispose tears down the owner's session: pending updates are dropped and
// in-flight refreshes cancelled.
func (t *Tracker) Dispose(owner string) bool {
	t.mu.Lock()
	s, ok := t.sessions[owner]
	if ok {
		delete(t.sessions, owner)
	}
	t.mu.Unlock()
	if ok {
		s.teardown.Run()
	}
	return ok
}

// Sessions reports the number of live sessions.
func (t *Tracker) Sessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Close disposes every session and waits for in-flight refreshes.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	sessions := t.sessions
	t.sessions = make(map[string]*session)
	t.mu.Unlock()

	for _, s := range sessions {
		s.teardown.Run()
	}
	t.wg.Wait()
}

func (t *Tracker) session(owner string) (*session, error) {
	now := t.now()
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, apperrors.Wrap(apperrors.CodeInternal, "location tracker closed", nil)
	}
	idle := t.sweepLocked(now)
	s, ok := t.sessions[owner]
	if !ok {
		s = t.newSession(owner)
		t.sessions[owner] = s
	}
	s.lastSeen = now
	t.mu.Unlock()

	for _, stale := range idle {
		stale.teardown.Run()
	}
	return s, nil
}

// sweepLocked unlinks sessions without an update for longer than IdleTTL.
// It runs at most once per IdleTTL; the caller tears the returned sessions
// down after releasing t.mu.
func (t *Tracker) sweepLocked(now time.Time) []*session {
	if now.Sub(t.lastSweep) <= t.cfg.IdleTTL {
		return nil
	}
	t.lastSweep = now
	var idle []*session
	for owner, s := range t.sessions {
		if now.Sub(s.lastSeen) > t.cfg.IdleTTL {
			delete(t.sessions, owner)
			idle = append(idle, s)
		}
	}
	if len(idle) > 0 {
		t.logger.Debug("evicted idle location sessions", "count", len(idle))
	}
	return idle
}

func (t *Tracker) newSession(owner string) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		owner:       owner,
		ctx:         ctx,
		triggerGate: NewDistanceGate(t.cfg.TriggerThresholdMeters),
		refetchGate: NewDistanceGate(t.cfg.RefetchThresholdMeters),
		state:       State{Owner: owner},
	}
	s.teardown.Add(cancel)
	if t.cfg.DebounceWait > 0 {
		s.debouncer = debounce.New(debounce.Options{Wait: t.cfg.DebounceWait, Trailing: true}, func(u Update) {
			t.process(s, u)
		})
		s.teardown.Add(s.debouncer.Cancel)
	}
	return s
}

func (t *Tracker) process(s *session, u Update) {
	if s.ctx.Err() != nil {
		return
	}
	p := u.Point()
	at := t.now()

	s.mu.Lock()
	s.state.Position = &p
	s.state.Type = u.Type
	s.state.UpdatedAt = at
	s.state.Pending = false
	s.mu.Unlock()

	if u.Type == TypeCurrent || t.cfg.TriggerOnSearchedPlaces {
		if s.triggerGate.Observe(p) {
			s.mu.Lock()
			s.state.LastTriggered = &p
			s.mu.Unlock()
			if t.triggers != nil {
				if err := t.triggers.PublishTrigger(s.ctx, s.owner, p, at); err != nil {
					t.logger.Warn("publish location trigger failed", "owner", s.owner, "error", err)
				}
			}
		}
	}

	if t.facilities == nil || !s.refetchGate.Observe(p) {
		return
	}
	s.mu.Lock()
	epoch := s.epoch.Next()
	s.state.Epoch = epoch
	s.state.LastLoaded = &p
	s.mu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()
	go t.refresh(s, p, epoch)
}

func (t *Tracker) refresh(s *session, p spatial.Point, epoch uint64) {
	defer t.wg.Done()
	ctx := s.ctx
	if t.cfg.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.RefreshTimeout)
		defer cancel()
	}
	snap, err := t.facilities.Nearby(ctx, facility.NearbyQuery{Center: p, RadiusKm: t.cfg.RefetchRadiusKm})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.epoch.IsCurrent(epoch) {
		t.logger.Debug("dropping stale facility snapshot", "owner", s.owner, "epoch", epoch, "current", s.epoch.Current())
		return
	}
	if err != nil {
		t.logger.Warn("facility refresh failed", "owner", s.owner, "error", err)
		// next report refetches
		s.refetchGate.Reset()
		return
	}
	snap.Epoch = epoch
	s.state.Snapshot = &snap
}

func (s *session) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
