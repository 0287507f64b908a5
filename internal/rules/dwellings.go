package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// Vacancy flags vacant dwellings on active properties. Snapshot rule, no
// window; informational only.
func Vacancy() Rule {
	return Rule{
		Type:  alert.TypeVacancy,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			dwellings, err := dir.Dwellings(ctx)
			if err != nil {
				return nil, fmt.Errorf("list dwellings: %w", err)
			}

			var out []alert.Candidate
			for _, dw := range dwellings {
				if dw.Status != source.DwellingStatusVacant {
					continue
				}
				prop, ok, err := dir.Property(ctx, dw.PropertyID)
				if err != nil {
					return nil, fmt.Errorf("property %s: %w", dw.PropertyID, err)
				}
				if ok && prop.Status != source.PropertyStatusActive {
					continue
				}

				propName := unknown
				if ok {
					propName = prop.Name
				}
				out = append(out, alert.Candidate{
					OrgID:    dw.OrgID,
					Type:     alert.TypeVacancy,
					Severity: alert.SeverityInfo,
					Title:    "Vacant Dwelling: " + dw.Name,
					Message: fmt.Sprintf("Dwelling %s at %s is vacant.",
						dw.Name, propName),
					Links:       alert.Links{DwellingID: dw.ID, PropertyID: dw.PropertyID},
					TriggerDate: clk.Now,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}
