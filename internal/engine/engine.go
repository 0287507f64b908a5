// Package engine provides the orchestrator that runs the monitoring rule
// catalog against one clock snapshot and materializes deduplicated alerts.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/rules"
	"github.com/linnemanlabs/beacon/internal/runlock"
	"github.com/linnemanlabs/beacon/internal/source"
)

const (
	// runLockKey is the lease key serializing whole orchestrator runs.
	runLockKey = "beacon:alert-run"

	// runLeaseTTL bounds how long a crashed run can block the next one.
	runLeaseTTL = 10 * time.Minute

	// defaultWorkers bounds concurrent rule evaluation. Evaluators read
	// disjoint collections and write disjoint alert types, so they are
	// safe to run in parallel.
	defaultWorkers = 4
)

// Trigger identifies who started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// RuleError records one isolated evaluator failure within a run.
type RuleError struct {
	Type alert.Type `json:"alert_type"`
	Err  string     `json:"error"`
}

// RunResult aggregates one orchestrator run.
type RunResult struct {
	Trigger        Trigger     `json:"trigger"`
	AlertsCreated  int         `json:"alerts_created"`
	DedupSkips     int         `json:"dedup_skips"`
	RuleErrors     []RuleError `json:"rule_errors,omitempty"`
	AlreadyRunning bool        `json:"already_running,omitempty"`
}

// Engine runs the rule catalog. All rules in one run observe the same clock
// snapshot; each rule is error-isolated so one failing evaluator cannot
// suppress unrelated rules.
type Engine struct {
	catalog []rules.Rule
	svc     *alert.Service
	store   alert.Store
	dir     source.Directory
	locker  runlock.Locker
	metrics *Metrics
	logger  log.Logger
	workers int
	now     func() time.Time
}

// New creates an orchestrator. locker and metrics may be nil; a nil locker
// degrades to an in-process lease.
func New(catalog []rules.Rule, svc *alert.Service, store alert.Store, dir source.Directory, locker runlock.Locker, metrics *Metrics, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	if locker == nil {
		locker = runlock.NewLocal()
	}
	return &Engine{
		catalog: catalog,
		svc:     svc,
		store:   store,
		dir:     dir,
		locker:  locker,
		metrics: metrics,
		logger:  logger,
		workers: defaultWorkers,
		now:     time.Now,
	}
}

// SetNowFunc overrides the wall clock, for tests.
func (e *Engine) SetNowFunc(now func() time.Time) { e.now = now }

// SetWorkers overrides the rule evaluation concurrency limit.
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// RunAll evaluates every rule in the catalog against one clock snapshot and
// returns the aggregate count of newly created alerts. Safe to call
// repeatedly: unchanged source data yields zero new alerts, and concurrent
// invocations are serialized by the run lease.
func (e *Engine) RunAll(ctx context.Context, trigger Trigger) (*RunResult, error) {
	start := e.now()

	lease, ok, err := e.locker.Acquire(ctx, runLockKey, runLeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lease: %w", err)
	}
	if !ok {
		e.logger.Info(ctx, "alert run already in progress, skipping", "trigger", trigger)
		e.observeRun(trigger, "locked", 0)
		return &RunResult{Trigger: trigger, AlreadyRunning: true}, nil
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			e.logger.Error(ctx, err, "release run lease")
		}
	}()

	clk := clock.At(start)
	notify := trigger != TriggerManual

	L := e.logger.With("trigger", string(trigger))
	L.Info(ctx, "alert run started", "rules", len(e.catalog), "as_of", clk.Now)

	var mu sync.Mutex
	result := &RunResult{Trigger: trigger}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, r := range e.catalog {
		g.Go(func() error {
			created, skips, err := e.runRule(gctx, r, clk, notify)
			mu.Lock()
			defer mu.Unlock()
			result.AlertsCreated += created
			result.DedupSkips += skips
			if err != nil {
				result.RuleErrors = append(result.RuleErrors, RuleError{Type: r.Type, Err: err.Error()})
			}
			return nil
		})
	}
	_ = g.Wait() // rule errors are collected, never propagated

	e.updateActiveGauge(ctx)

	outcome := "ok"
	if len(result.RuleErrors) > 0 {
		outcome = "partial"
	}
	e.observeRun(trigger, outcome, e.now().Sub(start))

	L.Info(ctx, "alert run complete",
		"alerts_created", result.AlertsCreated,
		"dedup_skips", result.DedupSkips,
		"rule_errors", len(result.RuleErrors),
		"duration", e.now().Sub(start).Seconds(),
	)
	return result, nil
}

// runRule evaluates one rule and materializes its candidates. The returned
// error is informational; the caller records it without aborting the run.
func (e *Engine) runRule(ctx context.Context, r rules.Rule, clk clock.Snapshot, notify bool) (created, skips int, err error) {
	ruleStart := e.now()
	defer func() {
		if e.metrics != nil {
			e.metrics.RuleDuration.WithLabelValues(string(r.Type)).Observe(e.now().Sub(ruleStart).Seconds())
		}
	}()

	candidates, err := r.Evaluate(ctx, clk, e.dir)
	if err != nil {
		e.recordRuleError(ctx, r.Type, err, "rule evaluation failed")
		return 0, 0, err
	}

	for _, c := range candidates {
		_, inserted, err := e.svc.Create(ctx, c, notify)
		if err != nil {
			e.recordRuleError(ctx, r.Type, err, "alert materialization failed")
			return created, skips, err
		}
		if inserted {
			created++
		} else {
			skips++
		}
	}
	return created, skips, nil
}

func (e *Engine) recordRuleError(ctx context.Context, t alert.Type, err error, msg string) {
	if e.metrics != nil {
		e.metrics.RuleErrors.WithLabelValues(string(t)).Inc()
	}
	e.logger.Error(ctx, err, msg, "alert_type", t)
}

func (e *Engine) updateActiveGauge(ctx context.Context) {
	if e.metrics == nil {
		return
	}
	counts, err := e.store.CountActive(ctx)
	if err != nil {
		e.logger.Error(ctx, err, "count active alerts")
		return
	}
	for _, sev := range []alert.Severity{alert.SeverityCritical, alert.SeverityWarning, alert.SeverityInfo} {
		e.metrics.ActiveAlerts.WithLabelValues(string(sev)).Set(float64(counts[sev]))
	}
}

func (e *Engine) observeRun(trigger Trigger, outcome string, dur time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.Runs.WithLabelValues(string(trigger), outcome).Inc()
	if outcome != "locked" {
		e.metrics.RunDuration.Observe(dur.Seconds())
	}
}
