package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// MaintenanceDue flags urgent maintenance requests that are still open or in
// progress. Always critical.
func MaintenanceDue() Rule {
	return Rule{
		Type:  alert.TypeMaintenanceDue,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			reqs, err := dir.MaintenanceRequests(ctx)
			if err != nil {
				return nil, fmt.Errorf("list maintenance requests: %w", err)
			}

			var out []alert.Candidate
			for _, req := range reqs {
				if req.Priority != source.RequestPriorityUrgent {
					continue
				}
				if req.Status != source.RequestStatusOpen && req.Status != source.RequestStatusInProgress {
					continue
				}

				out = append(out, alert.Candidate{
					OrgID:    req.OrgID,
					Type:     alert.TypeMaintenanceDue,
					Severity: alert.SeverityCritical,
					Title:    "Urgent Maintenance: " + req.Title,
					Message: fmt.Sprintf("Urgent maintenance request %q at %s is %s.",
						req.Title, propertyName(ctx, dir, req.PropertyID), req.Status),
					Links: alert.Links{
						MaintenanceRequestID: req.ID,
						PropertyID:           req.PropertyID,
						DwellingID:           req.DwellingID,
					},
					TriggerDate: clk.Now,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}
