package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// InspectionUpcoming flags scheduled inspections within 7 days. Warning the
// day before and day of, info otherwise; dedup on title.
func InspectionUpcoming() Rule {
	return Rule{
		Type:  alert.TypeInspectionUpcoming,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			inspections, err := dir.Inspections(ctx)
			if err != nil {
				return nil, fmt.Errorf("list inspections: %w", err)
			}

			var out []alert.Candidate
			for _, insp := range inspections {
				if insp.Status != source.InspectionStatusScheduled {
					continue
				}
				d := clk.DaysUntil(insp.ScheduledDate)
				if d < 0 || d > clock.Horizon7d {
					continue
				}

				sev := alert.SeverityInfo
				if d <= 1 {
					sev = alert.SeverityWarning
				}

				prop := propertyName(ctx, dir, insp.PropertyID)
				due := insp.ScheduledDate
				out = append(out, alert.Candidate{
					OrgID:    insp.OrgID,
					Type:     alert.TypeInspectionUpcoming,
					Severity: sev,
					Title:    fmt.Sprintf("Inspection Upcoming: %s (%s)", prop, due.Format("2 Jan 2006")),
					Message: fmt.Sprintf("Inspection at %s is scheduled %s.",
						prop, inDays(d)),
					Links:       alert.Links{PropertyID: insp.PropertyID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTitle,
				})
			}
			return out, nil
		},
	}
}
