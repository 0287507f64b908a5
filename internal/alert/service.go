package alert

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Notifier fans an inserted alert out to the outbound notification
// collaborator. Delivery is best-effort and must not block alert creation.
type Notifier interface {
	AlertCreated(ctx context.Context, a *Alert) error
}

// Service is the business boundary for alert creation and lifecycle.
type Service struct {
	store    Store
	notifier Notifier
	metrics  *Metrics
	logger   log.Logger
	now      func() time.Time
}

// NewService creates a new alert service. notifier and metrics may be nil.
func NewService(store Store, notifier Notifier, metrics *Metrics, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNowFunc overrides the wall clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) { s.now = now }

// CreateIfNotExists materializes a candidate unless an active alert with the
// same (type, dedup key) already exists. It returns the new alert's ID and
// true on insert, or "" and false on a dedup skip. Inserted alerts are fanned
// out to the notifier; this is the entry point for event-triggered one-off
// alerts (payment variance, owner payment reminders).
func (s *Service) CreateIfNotExists(ctx context.Context, c Candidate) (string, bool, error) {
	return s.Create(ctx, c, true)
}

// Create is CreateIfNotExists with explicit control over notification
// fan-out; the orchestrator suppresses fan-out for manually triggered runs.
func (s *Service) Create(ctx context.Context, c Candidate, notify bool) (string, bool, error) {
	a := &Alert{
		ID:          ulid.Make().String(),
		OrgID:       c.OrgID,
		Type:        c.Type,
		Severity:    c.Severity,
		Title:       c.Title,
		Message:     c.Message,
		Links:       c.Links,
		DedupKey:    c.DedupKey(),
		TriggerDate: c.TriggerDate,
		DueDate:     c.DueDate,
		CreatedAt:   s.now().UTC(),
		Status:      StatusActive,
	}

	inserted, err := s.store.InsertIfAbsent(ctx, a)
	if err != nil {
		return "", false, err
	}
	if !inserted {
		if s.metrics != nil {
			s.metrics.DedupSkips.WithLabelValues(string(c.Type)).Inc()
		}
		return "", false, nil
	}

	if s.metrics != nil {
		s.metrics.Created.WithLabelValues(string(c.Type), string(c.Severity)).Inc()
	}

	if notify && s.notifier != nil {
		if err := s.notifier.AlertCreated(ctx, a); err != nil {
			s.logger.Error(ctx, err, "notification enqueue failed",
				"alert_id", a.ID, "alert_type", a.Type)
		}
	}

	return a.ID, true, nil
}

// Get retrieves an alert by ID, scoped to the caller's organization.
func (s *Service) Get(ctx context.Context, orgID, id string) (*Alert, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || !orgVisible(a, orgID) {
		return nil, ErrNotFound
	}
	return a, nil
}

// List returns alerts matching the filter, scoped to the caller's organization.
func (s *Service) List(ctx context.Context, orgID string, f Filter) ([]*Alert, error) {
	f.OrgID = orgID
	return s.store.List(ctx, f)
}

// Acknowledge marks an active alert as seen by actor. Non-terminal.
func (s *Service) Acknowledge(ctx context.Context, orgID, id, actor string) (*Alert, error) {
	return s.transition(ctx, orgID, id, func(a *Alert) error {
		if a.Status.Terminal() {
			return ErrTerminal
		}
		if a.Status != StatusActive {
			return ErrInvalidTransition
		}
		ts := s.now().UTC()
		a.Status = StatusAcknowledged
		a.AcknowledgedBy = actor
		a.AcknowledgedAt = &ts
		return nil
	})
}

// Resolve transitions an active or acknowledged alert to resolved. Terminal.
func (s *Service) Resolve(ctx context.Context, orgID, id, actor string) (*Alert, error) {
	return s.transition(ctx, orgID, id, func(a *Alert) error {
		if a.Status.Terminal() {
			return ErrTerminal
		}
		s.resolveInPlace(a, actor)
		return nil
	})
}

// Dismiss transitions an active alert to dismissed. Terminal, no reason
// required.
func (s *Service) Dismiss(ctx context.Context, orgID, id string) (*Alert, error) {
	return s.transition(ctx, orgID, id, func(a *Alert) error {
		if a.Status.Terminal() {
			return ErrTerminal
		}
		if a.Status != StatusActive {
			return ErrInvalidTransition
		}
		a.Status = StatusDismissed
		return nil
	})
}

// Remove deletes an alert outside the state machine. Permission gating is the
// caller's responsibility.
func (s *Service) Remove(ctx context.Context, orgID, id string) error {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok || !orgVisible(a, orgID) {
		return ErrNotFound
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ResolveActiveFor force-resolves every active alert of the given type linked
// to the given entity, with no human actor. Entity-mutation collaborators call
// this when the underlying condition clears (e.g. a participant profile
// becomes complete).
func (s *Service) ResolveActiveFor(ctx context.Context, entity Links, t Type) (int, error) {
	alerts, err := s.store.List(ctx, Filter{Status: StatusActive, Type: t, Entity: entity})
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, a := range alerts {
		s.resolveInPlace(a, "")
		if err := s.store.Update(ctx, a); err != nil {
			return resolved, err
		}
		resolved++
		if s.metrics != nil {
			s.metrics.AutoResolved.WithLabelValues(string(t)).Inc()
		}
	}
	if resolved > 0 {
		s.logger.Info(ctx, "auto-resolved alerts", "alert_type", t, "count", resolved)
	}
	return resolved, nil
}

func (s *Service) resolveInPlace(a *Alert, actor string) {
	ts := s.now().UTC()
	a.Status = StatusResolved
	a.ResolvedBy = actor
	a.ResolvedAt = &ts
}

func (s *Service) transition(ctx context.Context, orgID, id string, apply func(*Alert) error) (*Alert, error) {
	a, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok || !orgVisible(a, orgID) {
		return nil, ErrNotFound
	}
	if err := apply(a); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(a.Status)).Inc()
	}
	return a, nil
}

// orgVisible reports whether an alert may be seen by the given org. Alerts
// without an org (non-tenant-scoped families) are visible to everyone.
func orgVisible(a *Alert, orgID string) bool {
	return a.OrgID == "" || a.OrgID == orgID
}
