// Package pgstore provides a PostgreSQL implementation of alert.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/beacon/internal/alert"
)

var tracer = otel.Tracer("github.com/linnemanlabs/beacon/internal/alert/pgstore")

//go:embed schema.sql
var schema string

// Store persists alerts in PostgreSQL. The active-dedup invariant is held by
// a partial unique index, so InsertIfAbsent is a single atomic statement.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store on the given pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const alertColumns = `id, org_id, alert_type, severity, title, message,
	participant_id, property_id, dwelling_id, maintenance_request_id,
	schedule_id, plan_id, owner_id, dedup_key,
	trigger_date, due_date, created_at,
	status, acknowledged_by, acknowledged_at, resolved_by, resolved_at`

// InsertIfAbsent inserts the alert unless an active alert with the same
// (type, dedup key) exists; the partial unique index arbitrates concurrent
// inserts.
func (s *Store) InsertIfAbsent(ctx context.Context, a *alert.Alert) (bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.InsertIfAbsent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
		attribute.String("beacon.alert.type", string(a.Type)),
	))
	defer span.End()

	query := `INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		ON CONFLICT (alert_type, dedup_key) WHERE status = 'active' DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		a.ID, a.OrgID, string(a.Type), string(a.Severity), a.Title, a.Message,
		a.Links.ParticipantID, a.Links.PropertyID, a.Links.DwellingID,
		a.Links.MaintenanceRequestID, a.Links.ScheduleID, a.Links.PlanID, a.Links.OwnerID,
		a.DedupKey, a.TriggerDate, a.DueDate, a.CreatedAt,
		string(a.Status), a.AcknowledgedBy, a.AcknowledgedAt, a.ResolvedBy, a.ResolvedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get retrieves an alert by ID.
func (s *Store) Get(ctx context.Context, id string) (*alert.Alert, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	a, err := scanAlertRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if a == nil {
		return nil, false, nil
	}
	return a, true, nil
}

// List returns alerts matching the filter, most urgent and most recent first.
func (s *Store) List(ctx context.Context, f alert.Filter) ([]*alert.Alert, error) {
	ctx, span := tracer.Start(ctx, "pgstore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	where, args := buildFilter(f)
	query := `SELECT ` + alertColumns + ` FROM alerts` + where + `
		ORDER BY CASE severity WHEN 'critical' THEN 3 WHEN 'warning' THEN 2 ELSE 1 END DESC,
			created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []*alert.Alert
	for rows.Next() {
		a, err := scanAlertRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

// Update rewrites all mutable fields of an alert.
func (s *Store) Update(ctx context.Context, a *alert.Alert) error {
	ctx, span := tracer.Start(ctx, "pgstore.Update", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	query := `UPDATE alerts SET
		status = $2, acknowledged_by = $3, acknowledged_at = $4,
		resolved_by = $5, resolved_at = $6
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		a.ID, string(a.Status), a.AcknowledgedBy, a.AcknowledgedAt, a.ResolvedBy, a.ResolvedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return alert.ErrNotFound
	}
	return nil
}

// Delete removes an alert by ID.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Delete", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "DELETE"),
	))
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("delete alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountActive returns the number of active alerts per severity.
func (s *Store) CountActive(ctx context.Context) (map[alert.Severity]int, error) {
	ctx, span := tracer.Start(ctx, "pgstore.CountActive", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT severity, count(*) FROM alerts WHERE status = 'active' GROUP BY severity`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("count active: %w", err)
	}
	defer rows.Close()

	counts := make(map[alert.Severity]int)
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[alert.Severity(sev)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// buildFilter renders the WHERE clause for a List call. Org scoping keeps
// rows with an empty org_id visible to every caller.
func buildFilter(f alert.Filter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if f.OrgID != "" {
		add("(org_id = '' OR org_id = ?)", f.OrgID)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Type != "" {
		add("alert_type = ?", string(f.Type))
	}
	if f.Severity != "" {
		add("severity = ?", string(f.Severity))
	}
	if f.Entity.ParticipantID != "" {
		add("participant_id = ?", f.Entity.ParticipantID)
	}
	if f.Entity.PropertyID != "" {
		add("property_id = ?", f.Entity.PropertyID)
	}
	if f.Entity.DwellingID != "" {
		add("dwelling_id = ?", f.Entity.DwellingID)
	}
	if f.Entity.MaintenanceRequestID != "" {
		add("maintenance_request_id = ?", f.Entity.MaintenanceRequestID)
	}
	if f.Entity.ScheduleID != "" {
		add("schedule_id = ?", f.Entity.ScheduleID)
	}
	if f.Entity.PlanID != "" {
		add("plan_id = ?", f.Entity.PlanID)
	}
	if f.Entity.OwnerID != "" {
		add("owner_id = ?", f.Entity.OwnerID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanAlertRow scans a single row into an alert.Alert.
// Returns (nil, nil) when no row is found.
func scanAlertRow(row pgx.Row) (*alert.Alert, error) {
	var (
		a            alert.Alert
		typ, sev, st string
		dueDate      *time.Time
		ackAt, resAt *time.Time
	)

	err := row.Scan(
		&a.ID, &a.OrgID, &typ, &sev, &a.Title, &a.Message,
		&a.Links.ParticipantID, &a.Links.PropertyID, &a.Links.DwellingID,
		&a.Links.MaintenanceRequestID, &a.Links.ScheduleID, &a.Links.PlanID, &a.Links.OwnerID,
		&a.DedupKey, &a.TriggerDate, &dueDate, &a.CreatedAt,
		&st, &a.AcknowledgedBy, &ackAt, &a.ResolvedBy, &resAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	a.Type = alert.Type(typ)
	a.Severity = alert.Severity(sev)
	a.Status = alert.Status(st)
	a.DueDate = dueDate
	a.AcknowledgedAt = ackAt
	a.ResolvedAt = resAt
	return &a, nil
}
