package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/beacon/internal/alert"
)

func mkAlert(id string, t alert.Type, dedupKey string) *alert.Alert {
	return &alert.Alert{
		ID:        id,
		Type:      t,
		Severity:  alert.SeverityWarning,
		Title:     "title for " + id,
		DedupKey:  dedupKey,
		Status:    alert.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func TestInsertIfAbsent(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	inserted, err := s.InsertIfAbsent(ctx, mkAlert("a1", alert.TypeVacancy, "|p1|d1||||"))
	if err != nil || !inserted {
		t.Fatalf("first insert = (%v, %v), want (true, nil)", inserted, err)
	}

	// Same type + dedup key while the first is active: skipped.
	inserted, err = s.InsertIfAbsent(ctx, mkAlert("a2", alert.TypeVacancy, "|p1|d1||||"))
	if err != nil || inserted {
		t.Fatalf("duplicate insert = (%v, %v), want (false, nil)", inserted, err)
	}
	if _, ok, _ := s.Get(ctx, "a2"); ok {
		t.Error("skipped alert was stored")
	}

	// Same dedup key under a different type: allowed.
	inserted, _ = s.InsertIfAbsent(ctx, mkAlert("a3", alert.TypePlanExpiry, "|p1|d1||||"))
	if !inserted {
		t.Error("same key under different type should insert")
	}

	// Different key under the same type: allowed.
	inserted, _ = s.InsertIfAbsent(ctx, mkAlert("a4", alert.TypeVacancy, "|p1|d2||||"))
	if !inserted {
		t.Error("different key under same type should insert")
	}
}

func TestInsertIfAbsent_AfterTerminal(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	a := mkAlert("a1", alert.TypeVacancy, "k")
	if _, err := s.InsertIfAbsent(ctx, a); err != nil {
		t.Fatal(err)
	}

	// Resolve it; the dedup slot frees up.
	a.Status = alert.StatusResolved
	if err := s.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}

	inserted, err := s.InsertIfAbsent(ctx, mkAlert("a2", alert.TypeVacancy, "k"))
	if err != nil || !inserted {
		t.Errorf("insert after resolve = (%v, %v), want (true, nil)", inserted, err)
	}
}

func TestInsertIfAbsent_Concurrent(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := s.InsertIfAbsent(ctx, mkAlert(fmt.Sprintf("a%d", i), alert.TypeVacancy, "same-key"))
			if err != nil {
				t.Errorf("insert %d: %v", i, err)
			}
			results[i] = inserted
		}()
	}
	wg.Wait()

	wins := 0
	for _, r := range results {
		if r {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("%d concurrent inserts won, want exactly 1", wins)
	}
}

func TestList_FilterAndSort(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	add := func(id string, typ alert.Type, sev alert.Severity, status alert.Status, links alert.Links, age time.Duration) {
		a := mkAlert(id, typ, id)
		a.Severity = sev
		a.Status = status
		a.Links = links
		a.CreatedAt = base.Add(age)
		if _, err := s.InsertIfAbsent(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	add("info-old", alert.TypeVacancy, alert.SeverityInfo, alert.StatusActive, alert.Links{DwellingID: "d1"}, 0)
	add("crit", alert.TypeMaintenanceDue, alert.SeverityCritical, alert.StatusActive, alert.Links{PropertyID: "pr1"}, time.Hour)
	add("warn-new", alert.TypeDocumentExpiry, alert.SeverityWarning, alert.StatusActive, alert.Links{ParticipantID: "p1"}, 3*time.Hour)
	add("warn-old", alert.TypePlanExpiry, alert.SeverityWarning, alert.StatusAcknowledged, alert.Links{ParticipantID: "p1"}, 2*time.Hour)

	all, err := s.List(ctx, alert.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	gotOrder := make([]string, len(all))
	for i, a := range all {
		gotOrder[i] = a.ID
	}
	wantOrder := []string{"crit", "warn-new", "warn-old", "info-old"}
	for i := range wantOrder {
		if i >= len(gotOrder) || gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}

	tests := []struct {
		name string
		f    alert.Filter
		want int
	}{
		{"by status", alert.Filter{Status: alert.StatusActive}, 3},
		{"by type", alert.Filter{Type: alert.TypeVacancy}, 1},
		{"by severity", alert.Filter{Severity: alert.SeverityWarning}, 2},
		{"by entity", alert.Filter{Entity: alert.Links{ParticipantID: "p1"}}, 2},
		{"combined", alert.Filter{Status: alert.StatusActive, Entity: alert.Links{ParticipantID: "p1"}}, 1},
		{"no match", alert.Filter{Entity: alert.Links{OwnerID: "nobody"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.List(ctx, tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("returned %d alerts, want %d", len(got), tt.want)
			}
		})
	}
}

func TestList_OrgScoping(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	scoped := mkAlert("scoped", alert.TypePlanExpiry, "k1")
	scoped.OrgID = "org-a"
	unscoped := mkAlert("unscoped", alert.TypeVacancy, "k2")
	for _, a := range []*alert.Alert{scoped, unscoped} {
		if _, err := s.InsertIfAbsent(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := s.List(ctx, alert.Filter{OrgID: "org-a"})
	if len(got) != 2 {
		t.Errorf("org-a sees %d, want 2 (own + unscoped)", len(got))
	}
	got, _ = s.List(ctx, alert.Filter{OrgID: "org-b"})
	if len(got) != 1 || got[0].ID != "unscoped" {
		t.Errorf("org-b sees %v, want only the unscoped alert", got)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	t.Parallel()

	s := New()
	err := s.Update(context.Background(), mkAlert("ghost", alert.TypeVacancy, "k"))
	if err != alert.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if _, err := s.InsertIfAbsent(ctx, mkAlert("a1", alert.TypeVacancy, "k")); err != nil {
		t.Fatal(err)
	}

	got, ok, _ := s.Get(ctx, "a1")
	if !ok {
		t.Fatal("alert not found")
	}
	got.Title = "mutated"

	again, _, _ := s.Get(ctx, "a1")
	if again.Title == "mutated" {
		t.Error("Get returned a shared pointer, want a copy")
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if _, err := s.InsertIfAbsent(ctx, mkAlert("a1", alert.TypeVacancy, "k")); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.Delete(ctx, "a1")
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v), want (true, nil)", deleted, err)
	}

	// The dedup slot frees up with the row gone.
	if inserted, _ := s.InsertIfAbsent(ctx, mkAlert("a2", alert.TypeVacancy, "k")); !inserted {
		t.Error("insert after delete should succeed")
	}

	deleted, err = s.Delete(ctx, "a1")
	if err != nil || deleted {
		t.Errorf("second delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestCountActive(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	add := func(id string, sev alert.Severity, status alert.Status) {
		a := mkAlert(id, alert.TypeVacancy, id)
		a.Severity = sev
		a.Status = status
		if _, err := s.InsertIfAbsent(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	add("c1", alert.SeverityCritical, alert.StatusActive)
	add("c2", alert.SeverityCritical, alert.StatusActive)
	add("w1", alert.SeverityWarning, alert.StatusActive)
	add("r1", alert.SeverityCritical, alert.StatusResolved)

	counts, err := s.CountActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[alert.SeverityCritical] != 2 || counts[alert.SeverityWarning] != 1 || counts[alert.SeverityInfo] != 0 {
		t.Errorf("counts = %v, want crit=2 warn=1 info=0", counts)
	}
}
