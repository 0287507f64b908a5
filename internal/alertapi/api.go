// Package alertapi exposes the alert lifecycle and run-trigger HTTP surface.
package alertapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/authmw"
	"github.com/linnemanlabs/beacon/internal/engine"
)

// Runner triggers a full rule evaluation run.
type Runner interface {
	RunAll(ctx context.Context, trigger engine.Trigger) (*engine.RunResult, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    *alert.Service
	runner Runner
}

// New creates a new API handler. runner may be nil, which disables the
// manual run endpoint.
func New(logger log.Logger, svc *alert.Service, runner Runner) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("alert service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		runner: runner,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/alerts", func(r chi.Router) {
		r.Post("/run", a.handleRun)
		r.Post("/resolve-for", a.handleResolveFor)
		r.Get("/", a.handleList)
		r.Get("/{id}", a.handleGet)
		r.Post("/{id}/acknowledge", a.handleAcknowledge)
		r.Post("/{id}/resolve", a.handleResolve)
		r.Post("/{id}/dismiss", a.handleDismiss)
		r.Delete("/{id}", a.handleDelete)
	})
}

func (a *API) handleRun(w http.ResponseWriter, r *http.Request) {
	if a.runner == nil {
		http.Error(w, `{"error":"manual runs are not enabled"}`, http.StatusNotImplemented)
		return
	}

	result, err := a.runner.RunAll(r.Context(), engine.TriggerManual)
	if err != nil {
		a.logger.Error(r.Context(), err, "manual alert run failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.AlreadyRunning {
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	alerts, err := a.svc.List(r.Context(), authmw.FromContext(r.Context()).OrgID, f)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list alerts")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []*alert.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("beacon.alert.id", id))

	al, err := a.svc.Get(r.Context(), authmw.FromContext(r.Context()).OrgID, id)
	if err != nil {
		a.writeError(w, r, err, "failed to get alert", id)
		return
	}

	span.SetAttributes(attribute.String("beacon.alert.status", string(al.Status)))
	writeJSON(w, http.StatusOK, al)
}

func (a *API) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "acknowledge", func(ctx context.Context, id authmw.Identity, alertID string) (*alert.Alert, error) {
		return a.svc.Acknowledge(ctx, id.OrgID, alertID, id.UserID)
	})
}

func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "resolve", func(ctx context.Context, id authmw.Identity, alertID string) (*alert.Alert, error) {
		return a.svc.Resolve(ctx, id.OrgID, alertID, id.UserID)
	})
}

func (a *API) handleDismiss(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, "dismiss", func(ctx context.Context, id authmw.Identity, alertID string) (*alert.Alert, error) {
		return a.svc.Dismiss(ctx, id.OrgID, alertID)
	})
}

// handleResolveFor is the auto-resolution hook for entity-mutation
// collaborators: when an underlying condition clears (e.g. a participant
// profile is completed), every active alert of the given type linked to the
// entity is resolved with no human actor.
func (a *API) handleResolveFor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertType            alert.Type `json:"alert_type"`
		ParticipantID        string     `json:"participant_id"`
		PropertyID           string     `json:"property_id"`
		DwellingID           string     `json:"dwelling_id"`
		MaintenanceRequestID string     `json:"maintenance_request_id"`
		ScheduleID           string     `json:"schedule_id"`
		PlanID               string     `json:"plan_id"`
		OwnerID              string     `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	entity := alert.Links{
		ParticipantID:        req.ParticipantID,
		PropertyID:           req.PropertyID,
		DwellingID:           req.DwellingID,
		MaintenanceRequestID: req.MaintenanceRequestID,
		ScheduleID:           req.ScheduleID,
		PlanID:               req.PlanID,
		OwnerID:              req.OwnerID,
	}
	if req.AlertType == "" || entity == (alert.Links{}) {
		http.Error(w, `{"error":"alert_type and a linked entity id are required"}`, http.StatusBadRequest)
		return
	}

	n, err := a.svc.ResolveActiveFor(r.Context(), entity, req.AlertType)
	if err != nil {
		a.logger.Error(r.Context(), err, "auto-resolve failed", "alert_type", req.AlertType)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"resolved": n})
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.svc.Remove(r.Context(), authmw.FromContext(r.Context()).OrgID, id); err != nil {
		a.writeError(w, r, err, "failed to delete alert", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) transition(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, authmw.Identity, string) (*alert.Alert, error)) {
	alertID := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("beacon.alert.id", alertID),
		attribute.String("beacon.alert.op", op),
	)

	al, err := apply(r.Context(), authmw.FromContext(r.Context()), alertID)
	if err != nil {
		a.writeError(w, r, err, "failed to "+op+" alert", alertID)
		return
	}
	writeJSON(w, http.StatusOK, al)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, msg, id string) {
	switch {
	case errors.Is(err, alert.ErrNotFound):
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	case errors.Is(err, alert.ErrTerminal):
		http.Error(w, `{"error":"alert is in a terminal state"}`, http.StatusConflict)
	case errors.Is(err, alert.ErrInvalidTransition):
		http.Error(w, `{"error":"transition not permitted from current status"}`, http.StatusConflict)
	default:
		a.logger.Error(r.Context(), err, msg, "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func filterFromQuery(r *http.Request) (alert.Filter, error) {
	q := r.URL.Query()
	f := alert.Filter{
		Type: alert.Type(q.Get("type")),
		Entity: alert.Links{
			ParticipantID:        q.Get("participant_id"),
			PropertyID:           q.Get("property_id"),
			DwellingID:           q.Get("dwelling_id"),
			MaintenanceRequestID: q.Get("maintenance_request_id"),
			ScheduleID:           q.Get("schedule_id"),
			PlanID:               q.Get("plan_id"),
			OwnerID:              q.Get("owner_id"),
		},
	}

	switch s := alert.Status(q.Get("status")); s {
	case "", alert.StatusActive, alert.StatusAcknowledged, alert.StatusResolved, alert.StatusDismissed:
		f.Status = s
	default:
		return alert.Filter{}, errors.New("invalid status")
	}

	switch sev := alert.Severity(q.Get("severity")); sev {
	case "", alert.SeverityCritical, alert.SeverityWarning, alert.SeverityInfo:
		f.Severity = sev
	default:
		return alert.Filter{}, errors.New("invalid severity")
	}

	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
