package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// CertificationExpiry covers both certification branches: certifications
// already marked expired (critical) and certifications expiring within 30
// days (warning). Both dedup on title, so two certifications with the same
// name collapse to one alert per branch.
func CertificationExpiry() Rule {
	return Rule{
		Type:  alert.TypeCertificationExpiry,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			certs, err := dir.Certifications(ctx)
			if err != nil {
				return nil, fmt.Errorf("list certifications: %w", err)
			}

			var out []alert.Candidate
			for _, cert := range certs {
				if cert.Status == source.CertificationStatusExpired {
					out = append(out, alert.Candidate{
						OrgID:    cert.OrgID,
						Type:     alert.TypeCertificationExpiry,
						Severity: alert.SeverityCritical,
						Title:    "Expired Certification: " + cert.Name,
						Message: fmt.Sprintf("Certification %q at %s has expired and must be renewed.",
							cert.Name, propertyName(ctx, dir, cert.PropertyID)),
						Links:       alert.Links{PropertyID: cert.PropertyID},
						TriggerDate: clk.Now,
						DueDate:     cert.ExpiryDate,
						Dedup:       alert.DedupTitle,
					})
					continue
				}

				if cert.ExpiryDate == nil {
					continue
				}
				d := clk.DaysUntil(*cert.ExpiryDate)
				if d < 1 || d > clock.Horizon30d {
					continue
				}

				due := *cert.ExpiryDate
				out = append(out, alert.Candidate{
					OrgID:    cert.OrgID,
					Type:     alert.TypeCertificationExpiry,
					Severity: alert.SeverityWarning,
					Title:    "Certification Expiring: " + cert.Name,
					Message: fmt.Sprintf("Certification %q at %s expires %s (%s).",
						cert.Name, propertyName(ctx, dir, cert.PropertyID),
						inDays(d), due.Format("2 Jan 2006")),
					Links:       alert.Links{PropertyID: cert.PropertyID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTitle,
				})
			}
			return out, nil
		},
	}
}
