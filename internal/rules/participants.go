package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// ConsentExpiry covers both consent branches for participants whose consent
// is currently active: already-expired consent (critical) and consent
// expiring within 30 days (warning). Titles are per-participant per-branch.
func ConsentExpiry() Rule {
	return Rule{
		Type:  alert.TypeConsentExpiry,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			participants, err := dir.Participants(ctx)
			if err != nil {
				return nil, fmt.Errorf("list participants: %w", err)
			}

			var out []alert.Candidate
			for _, p := range participants {
				if p.ConsentStatus != source.ConsentStatusActive || p.ConsentExpiry == nil {
					continue
				}
				d := clk.DaysUntil(*p.ConsentExpiry)
				due := *p.ConsentExpiry

				switch {
				case d < 0:
					out = append(out, alert.Candidate{
						OrgID:    p.OrgID,
						Type:     alert.TypeConsentExpiry,
						Severity: alert.SeverityCritical,
						Title:    "Consent Expired: " + p.Name,
						Message: fmt.Sprintf("%s's consent expired on %s and must be renewed.",
							p.Name, due.Format("2 Jan 2006")),
						Links:       alert.Links{ParticipantID: p.ID},
						TriggerDate: clk.Now,
						DueDate:     &due,
						Dedup:       alert.DedupTitle,
					})
				case d >= 1 && d <= clock.Horizon30d:
					out = append(out, alert.Candidate{
						OrgID:    p.OrgID,
						Type:     alert.TypeConsentExpiry,
						Severity: alert.SeverityWarning,
						Title:    "Consent Expiring: " + p.Name,
						Message: fmt.Sprintf("%s's consent expires %s (%s).",
							p.Name, inDays(d), due.Format("2 Jan 2006")),
						Links:       alert.Links{ParticipantID: p.ID},
						TriggerDate: clk.Now,
						DueDate:     &due,
						Dedup:       alert.DedupTitle,
					})
				}
			}
			return out, nil
		},
	}
}

// ConsentMissing flags active or pending participants with no recorded
// consent, or consent still pending. Warning; dedup on title.
func ConsentMissing() Rule {
	return Rule{
		Type:  alert.TypeConsentMissing,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			participants, err := dir.Participants(ctx)
			if err != nil {
				return nil, fmt.Errorf("list participants: %w", err)
			}

			var out []alert.Candidate
			for _, p := range participants {
				if p.Status != source.ParticipantStatusActive && p.Status != source.ParticipantStatusPending {
					continue
				}
				if p.ConsentStatus != "" && p.ConsentStatus != source.ConsentStatusPending {
					continue
				}

				out = append(out, alert.Candidate{
					OrgID:    p.OrgID,
					Type:     alert.TypeConsentMissing,
					Severity: alert.SeverityWarning,
					Title:    "Consent Missing: " + p.Name,
					Message: fmt.Sprintf("%s has no recorded consent on file.",
						p.Name),
					Links:       alert.Links{ParticipantID: p.ID},
					TriggerDate: clk.Now,
					Dedup:       alert.DedupTitle,
				})
			}
			return out, nil
		},
	}
}

// profileIncompleteWindow bounds how long after creation a participant
// counts as "newly created" for the incomplete-profile rule.
const profileIncompleteWindow = 7 * 24 * time.Hour

// ProfileIncomplete flags recently created participants missing an NDIS
// number or a dwelling assignment. Warning; dedup on the participant link.
// This is the one family the engine auto-resolves when the profile becomes
// complete.
func ProfileIncomplete() Rule {
	return Rule{
		Type:  alert.TypeProfileIncomplete,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			participants, err := dir.Participants(ctx)
			if err != nil {
				return nil, fmt.Errorf("list participants: %w", err)
			}

			var out []alert.Candidate
			for _, p := range participants {
				if clk.Now.Sub(p.CreatedAt) > profileIncompleteWindow {
					continue
				}
				if p.NDISNumber != "" && p.DwellingID != "" {
					continue
				}

				var missing string
				switch {
				case p.NDISNumber == "" && p.DwellingID == "":
					missing = "an NDIS number and a dwelling assignment"
				case p.NDISNumber == "":
					missing = "an NDIS number"
				default:
					missing = "a dwelling assignment"
				}

				out = append(out, alert.Candidate{
					OrgID:    p.OrgID,
					Type:     alert.TypeProfileIncomplete,
					Severity: alert.SeverityWarning,
					Title:    "Incomplete Profile: " + p.Name,
					Message:  fmt.Sprintf("%s's profile is missing %s.", p.Name, missing),
					Links:    alert.Links{ParticipantID: p.ID},

					TriggerDate: clk.Now,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}
