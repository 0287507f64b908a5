package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// PlanExpiry flags current NDIS plans ending within the 30-day horizon.
// Critical inside 7 days, warning otherwise.
func PlanExpiry() Rule {
	return Rule{
		Type:  alert.TypePlanExpiry,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			plans, err := dir.Plans(ctx)
			if err != nil {
				return nil, fmt.Errorf("list plans: %w", err)
			}

			var out []alert.Candidate
			for _, p := range plans {
				if p.Status != source.PlanStatusCurrent || p.EndDate == nil {
					continue
				}
				d := clk.DaysUntil(*p.EndDate)
				if d < 0 || d > clock.Horizon30d {
					continue
				}

				sev := alert.SeverityWarning
				if d <= clock.Horizon7d {
					sev = alert.SeverityCritical
				}

				name := participantName(ctx, dir, p.ParticipantID)
				due := *p.EndDate
				out = append(out, alert.Candidate{
					OrgID:    p.OrgID,
					Type:     alert.TypePlanExpiry,
					Severity: sev,
					Title:    "NDIS Plan Expiring: " + name,
					Message: fmt.Sprintf("%s's NDIS plan expires %s (%s).",
						name, inDays(d), due.Format("2 Jan 2006")),
					Links:       alert.Links{ParticipantID: p.ParticipantID, PlanID: p.ID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}
