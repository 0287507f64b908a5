// Package rules defines the monitoring rule catalog. Each rule is a static
// definition that scans one source collection against a run-wide clock
// snapshot and yields alert candidates; the orchestrator owns execution,
// dedup and persistence.
package rules

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// Rule is one entry in the catalog: an alert family, its dedup strategy, and
// the evaluator that scans its source collection.
type Rule struct {
	Type  alert.Type
	Dedup alert.DedupStrategy

	Evaluate func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error)
}

// Catalog returns every scheduled rule definition. payment_variance is absent:
// it is event-triggered from the payment write path, not scanned.
func Catalog() []Rule {
	return []Rule{
		PlanExpiry(),
		DocumentExpiry(),
		Vacancy(),
		MaintenanceDue(),
		PreventativeScheduleDue(),
		CertificationExpiry(),
		ComplaintAckOverdue(),
		ConsentExpiry(),
		ConsentMissing(),
		SpecialistSchedule(),
		InspectionUpcoming(),
		ProfileIncomplete(),
		OwnerPaymentDue(),
	}
}

const unknown = "Unknown"

// participantName resolves a participant's display name, falling back to
// "Unknown" when the reference is dangling.
func participantName(ctx context.Context, dir source.Directory, id string) string {
	if id == "" {
		return unknown
	}
	p, ok, err := dir.Participant(ctx, id)
	if err != nil || !ok {
		return unknown
	}
	return p.Name
}

func propertyName(ctx context.Context, dir source.Directory, id string) string {
	if id == "" {
		return unknown
	}
	p, ok, err := dir.Property(ctx, id)
	if err != nil || !ok {
		return unknown
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Address
}

func dwellingName(ctx context.Context, dir source.Directory, id string) string {
	if id == "" {
		return unknown
	}
	d, ok, err := dir.Dwelling(ctx, id)
	if err != nil || !ok {
		return unknown
	}
	return d.Name
}

func ownerName(ctx context.Context, dir source.Directory, id string) string {
	if id == "" {
		return unknown
	}
	o, ok, err := dir.Owner(ctx, id)
	if err != nil || !ok {
		return unknown
	}
	return o.Name
}

// inDays renders a day distance as human wording: "today", "in 1 day",
// "in 12 days".
func inDays(d int) string {
	switch {
	case d <= 0:
		return "today"
	case d == 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", d)
	}
}

// daysOverdue renders a negative day distance: "1 day overdue", "3 days overdue".
func daysOverdue(d int) string {
	n := -d
	if n == 1 {
		return "1 day overdue"
	}
	return fmt.Sprintf("%d days overdue", n)
}

var currencyPrinter = message.NewPrinter(language.English)

// formatAmount renders a dollar amount with locale grouping: $1,234.56.
func formatAmount(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return currencyPrinter.Sprintf("$%.2f", f)
}
