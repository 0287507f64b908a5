package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// ownerPaymentLeadDays is how many days before the 5th the monthly owner
// disbursement reminder starts firing.
const ownerPaymentLeadDays = 3

// OwnerPaymentDue reminds about pending owner disbursements for the current
// month in the fixed window starting 3 days before the 5th. Warning; dedup on
// the owner link. Event-triggered reminders from the payment write path reuse
// the same candidate shape, so the daily batch is a backstop.
func OwnerPaymentDue() Rule {
	return Rule{
		Type:  alert.TypeOwnerPaymentDue,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			due := clk.FifthOfMonth()
			d := clk.DaysUntil(due)
			if d < 0 || d > ownerPaymentLeadDays {
				return nil, nil
			}

			y, m, _ := clk.Now.Date()
			payments, err := dir.PendingOwnerPayments(ctx, y, m)
			if err != nil {
				return nil, fmt.Errorf("list pending owner payments: %w", err)
			}

			var out []alert.Candidate
			for _, pay := range payments {
				name := ownerName(ctx, dir, pay.OwnerID)
				out = append(out, alert.Candidate{
					OrgID:    pay.OrgID,
					Type:     alert.TypeOwnerPaymentDue,
					Severity: alert.SeverityWarning,
					Title:    "Owner Payment Due: " + name,
					Message: fmt.Sprintf("Disbursement of %s to %s is due %s (%s).",
						formatAmount(pay.Amount), name, inDays(d), due.Format("2 Jan 2006")),
					Links:       alert.Links{OwnerID: pay.OwnerID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}

// Payment variance thresholds: below warnThreshold nothing fires; at or
// above criticalThreshold the alert escalates to critical.
var (
	varianceWarnThreshold     = decimal.NewFromInt(50)
	varianceCriticalThreshold = decimal.NewFromInt(500)
)

// PaymentVariance builds the event-triggered candidate raised by the payment
// write path when a recorded payment deviates from the expected amount. It
// returns false when the variance is within tolerance. The dedup tuple is
// qualified by the payment date, so one alert per participant per payment day.
func PaymentVariance(orgID, participantID, participantName string, expected, actual decimal.Decimal, paymentDate time.Time, clk clock.Snapshot) (alert.Candidate, bool) {
	variance := actual.Sub(expected)
	magnitude := variance.Abs()
	if magnitude.LessThanOrEqual(varianceWarnThreshold) {
		return alert.Candidate{}, false
	}

	sev := alert.SeverityWarning
	if magnitude.GreaterThanOrEqual(varianceCriticalThreshold) {
		sev = alert.SeverityCritical
	}

	direction := "above"
	if variance.IsNegative() {
		direction = "below"
	}
	if participantName == "" {
		participantName = unknown
	}

	return alert.Candidate{
		OrgID:    orgID,
		Type:     alert.TypePaymentVariance,
		Severity: sev,
		Title:    "Payment Variance: " + participantName,
		Message: fmt.Sprintf("Payment for %s on %s was %s, %s %s the expected %s.",
			participantName, paymentDate.Format("2 Jan 2006"),
			formatAmount(actual), formatAmount(magnitude), direction, formatAmount(expected)),
		Links:          alert.Links{ParticipantID: participantID},
		TriggerDate:    clk.Now,
		Dedup:          alert.DedupTuple,
		DedupQualifier: paymentDate.Format("2006-01-02"),
	}, true
}
