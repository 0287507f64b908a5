package rules

import (
	"context"
	"fmt"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/clock"
	"github.com/linnemanlabs/beacon/internal/source"
)

// PreventativeScheduleDue flags active non-specialist schedules whose next
// due date falls within 7 days. Critical inside 3 days, warning otherwise.
func PreventativeScheduleDue() Rule {
	return Rule{
		Type:  alert.TypePreventativeScheduleDue,
		Dedup: alert.DedupTuple,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			schedules, err := dir.Schedules(ctx)
			if err != nil {
				return nil, fmt.Errorf("list schedules: %w", err)
			}

			var out []alert.Candidate
			for _, sch := range schedules {
				if !sch.Active || sch.Specialist || sch.NextDueDate == nil {
					continue
				}
				d := clk.DaysUntil(*sch.NextDueDate)
				if d < 0 || d > clock.Horizon7d {
					continue
				}

				sev := alert.SeverityWarning
				if d <= 3 {
					sev = alert.SeverityCritical
				}

				due := *sch.NextDueDate
				out = append(out, alert.Candidate{
					OrgID:    sch.OrgID,
					Type:     alert.TypePreventativeScheduleDue,
					Severity: sev,
					Title:    "Preventative Maintenance Due: " + sch.TaskName,
					Message: fmt.Sprintf("Preventative task %q at %s is due %s.",
						sch.TaskName, propertyName(ctx, dir, sch.PropertyID), inDays(d)),
					Links:       alert.Links{ScheduleID: sch.ID, PropertyID: sch.PropertyID},
					TriggerDate: clk.Now,
					DueDate:     &due,
					Dedup:       alert.DedupTuple,
				})
			}
			return out, nil
		},
	}
}

// SpecialistSchedule flags specialist-flagged schedules. Upcoming within 14
// days emits specialist_schedule_due (critical inside 3 days, else warning);
// a next-due date in the past emits specialist_schedule_overdue, critical.
// Both branches dedup on title.
func SpecialistSchedule() Rule {
	return Rule{
		Type:  alert.TypeSpecialistScheduleDue,
		Dedup: alert.DedupTitle,
		Evaluate: func(ctx context.Context, clk clock.Snapshot, dir source.Directory) ([]alert.Candidate, error) {
			schedules, err := dir.Schedules(ctx)
			if err != nil {
				return nil, fmt.Errorf("list schedules: %w", err)
			}

			var out []alert.Candidate
			for _, sch := range schedules {
				if !sch.Active || !sch.Specialist || sch.NextDueDate == nil {
					continue
				}
				d := clk.DaysUntil(*sch.NextDueDate)
				prop := propertyName(ctx, dir, sch.PropertyID)
				due := *sch.NextDueDate

				switch {
				case d < 0:
					out = append(out, alert.Candidate{
						OrgID:    sch.OrgID,
						Type:     alert.TypeSpecialistScheduleLate,
						Severity: alert.SeverityCritical,
						Title:    fmt.Sprintf("Specialist Maintenance Overdue: %s at %s", sch.TaskName, prop),
						Message: fmt.Sprintf("Specialist task %q at %s is %s.",
							sch.TaskName, prop, daysOverdue(d)),
						Links:       alert.Links{ScheduleID: sch.ID, PropertyID: sch.PropertyID},
						TriggerDate: clk.Now,
						DueDate:     &due,
						Dedup:       alert.DedupTitle,
					})
				case d <= clock.Horizon14d:
					sev := alert.SeverityWarning
					if d <= 3 {
						sev = alert.SeverityCritical
					}
					out = append(out, alert.Candidate{
						OrgID:    sch.OrgID,
						Type:     alert.TypeSpecialistScheduleDue,
						Severity: sev,
						Title:    fmt.Sprintf("Specialist Maintenance Due: %s at %s", sch.TaskName, prop),
						Message: fmt.Sprintf("Specialist task %q at %s is due %s.",
							sch.TaskName, prop, inDays(d)),
						Links:       alert.Links{ScheduleID: sch.ID, PropertyID: sch.PropertyID},
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
