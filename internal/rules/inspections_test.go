package rules

import (
	"testing"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/source"
	"github.com/linnemanlabs/beacon/internal/source/memsource"
)

func TestInspectionUpcoming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		insp    source.Inspection
		wantHit bool
		wantSev alert.Severity
	}{
		{"today is warning", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(0)}, true, alert.SeverityWarning},
		{"tomorrow is warning", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(1)}, true, alert.SeverityWarning},
		{"in 2 days is info", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(2)}, true, alert.SeverityInfo},
		{"in 7 days is info", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(7)}, true, alert.SeverityInfo},
		{"in 8 days is outside the window", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(8)}, false, ""},
		{"yesterday is outside the window", source.Inspection{Status: source.InspectionStatusScheduled, ScheduledDate: *days(-1)}, false, ""},
		{"completed is skipped", source.Inspection{Status: "completed", ScheduledDate: *days(2)}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := memsource.New()
			dir.PropertyRows = []source.Property{{ID: "pr1", Name: "Rosewood House", Status: source.PropertyStatusActive}}
			tt.insp.ID = "i1"
			tt.insp.PropertyID = "pr1"
			dir.InspectionRows = []source.Inspection{tt.insp}

			got := evaluate(t, InspectionUpcoming(), dir)
			if tt.wantHit != (len(got) == 1) {
				t.Fatalf("got %d candidates, wantHit=%v", len(got), tt.wantHit)
			}
			if tt.wantHit && got[0].Severity != tt.wantSev {
				t.Errorf("severity = %q, want %q", got[0].Severity, tt.wantSev)
			}
		})
	}
}

func TestInspectionUpcoming_TitleEmbedsDate(t *testing.T) {
	t.Parallel()

	dir := memsource.New()
	dir.PropertyRows = []source.Property{{ID: "pr1", Name: "Rosewood House", Status: source.PropertyStatusActive}}
	dir.InspectionRows = []source.Inspection{{
		ID: "i1", PropertyID: "pr1",
		Status: source.InspectionStatusScheduled, ScheduledDate: *days(3),
	}}

	got := evaluate(t, InspectionUpcoming(), dir)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	want := "Inspection Upcoming: Rosewood House (4 Jun 2025)"
	if got[0].Title != want {
		t.Errorf("title = %q, want %q", got[0].Title, want)
	}
}
