package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// DocumentExpiry flags documents expiring within the 30-day horizon.
// Critical inside 7 days, warning otherwise.
func DocumentExpiry() Rule {
	return Rule{
		Type:  alert.TypeDocumentExpiry,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			docs, err := dir.Documents(ctx)
			if err != nil {
				return nil, fmt.Errorf("list documents: %w", err)
			}

			var out []alert.Candidate
			for _, doc := range docs {
				if doc.ExpiryDate == nil {
					continue
				}
				d := clk.DaysUntil(*doc.ExpiryDate)
				if d < 0 || d > clock.Horizon30d {
					continue
				}

				sev := alert.SeverityWarning
				if d <= clock.Horizon7d {
					sev = alert.SeverityCritical
				}

				name := participantName(ctx, dir, doc.ParticipantID)
				due := *doc.ExpiryDate
				out = append(out, alert.Candidate{
					OrgID:    doc.OrgID,
					Type:     alert.TypeDocumentExpiry,
					Severity: sev,
					Title:    "Document Expiring: " + doc.Name,
					Message: fmt.Sprintf("Document %q for %s expires %s (%s).",
						doc.Name, name, inDays(d), due.Format("2 Jan 2006")),
					Links:       alert.Links{ParticipantID: doc.ParticipantID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}
