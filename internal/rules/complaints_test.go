package rules

import (
	"testing"
	"time"

	"github.com/linnemanlabs/beacon/internal/source"
	"github.com/linnemanlabs/beacon/internal/source/memsource"
)

func TestComplaintAckOverdue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       source.Complaint
		wantHit bool
	}{
		{
			name:    "past the default 24h window",
			c:       source.Complaint{Status: source.ComplaintStatusReceived, ReceivedAt: testNow.Add(-25 * time.Hour)},
			wantHit: true,
		},
		{
			name:    "inside the default window",
			c:       source.Complaint{Status: source.ComplaintStatusReceived, ReceivedAt: testNow.Add(-23 * time.Hour)},
			wantHit: false,
		},
		{
			name: "explicit deadline overrides the default",
			c: source.Complaint{
				Status:     source.ComplaintStatusReceived,
				ReceivedAt: testNow.Add(-2 * time.Hour),
				AckDueAt:   timePtr(testNow.Add(-time.Hour)),
			},
			wantHit: true,
		},
		{
			name: "already acknowledged",
			c: source.Complaint{
				Status:         source.ComplaintStatusReceived,
				ReceivedAt:     testNow.Add(-48 * time.Hour),
				AcknowledgedAt: timePtr(testNow.Add(-40 * time.Hour)),
			},
			wantHit: false,
		},
		{
			name:    "no longer in received status",
			c:       source.Complaint{Status: "investigating", ReceivedAt: testNow.Add(-48 * time.Hour)},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := memsource.New()
			tt.c.ID = "cm1"
			tt.c.Reference = "CMP-2025-014"
			dir.ComplaintRows = []source.Complaint{tt.c}

			got := evaluate(t, ComplaintAckOverdue(), dir)
			if tt.wantHit != (len(got) == 1) {
				t.Fatalf("got %d candidates, wantHit=%v", len(got), tt.wantHit)
			}
			if tt.wantHit {
				want := "Complaint CMP-2025-014 acknowledgment overdue"
				if got[0].Title != want {
					t.Errorf("title = %q, want %q", got[0].Title, want)
				}
				if got[0].DedupKey() != want {
					t.Errorf("dedup key = %q, want the title", got[0].DedupKey())
				}
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
