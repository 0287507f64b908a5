package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// defaultAckWindow is the acknowledgment deadline applied when a complaint
// carries no explicit deadline.
const defaultAckWindow = 24 * time.Hour

// ComplaintAckOverdue flags received complaints that were not acknowledged
// before their deadline. Critical; dedup on title, which embeds the
// complaint's reference number.
func ComplaintAckOverdue() Rule {
	return Rule{
		Type:  alert.TypeComplaintAckOverdue,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			complaints, err := dir.Complaints(ctx)
			if err != nil {
				return nil, fmt.Errorf("list complaints: %w", err)
			}

			var out []alert.Candidate
			for _, c := range complaints {
				if c.Status != source.ComplaintStatusReceived || c.AcknowledgedAt != nil {
					continue
				}

				due := c.ReceivedAt.Add(defaultAckWindow)
				if c.AckDueAt != nil {
					due = *c.AckDueAt
				}
				if !clk.Now.After(due) {
					continue
				}

				out = append(out, alert.Candidate{
					OrgID:    c.OrgID,
					Type:     alert.TypeComplaintAckOverdue,
					Severity: alert.SeverityCritical,
					Title:    fmt.Sprintf("Complaint %s acknowledgment overdue", c.Reference),
					Message: fmt.Sprintf("Complaint %s received %s has passed its acknowledgment deadline.",
						c.Reference, c.ReceivedAt.Format("2 Jan 2006 15:04")),
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTitle,
				})
			}
			return out, nil
		},
	}
}
