// Package source defines read-only typed snapshots of the domain collections
// the alert engine monitors, and the Directory interface the engine scans
// them through. The engine never writes to these views.
package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Statuses the rule predicates filter on.
const (
	PlanStatusCurrent = "current"

	DwellingStatusVacant = "vacant"

	PropertyStatusActive = "active"

	RequestPriorityUrgent   = "urgent"
	RequestStatusOpen       = "open"
	RequestStatusInProgress = "in_progress"

	CertificationStatusExpired = "expired"

	ComplaintStatusReceived = "received"

	ParticipantStatusActive  = "active"
	ParticipantStatusPending = "pending"

	ConsentStatusActive  = "active"
	ConsentStatusPending = "pending"

	InspectionStatusScheduled = "scheduled"

	PaymentStatusPending = "pending"
)

// Plan is a participant's funding period.
type Plan struct {
	ID            string
	OrgID         string
	ParticipantID string
	Status        string
	StartDate     *time.Time
	EndDate       *time.Time
}

// Document is an uploaded record with an optional expiry.
type Document struct {
	ID            string
	OrgID         string
	ParticipantID string
	Name          string
	ExpiryDate    *time.Time
}

// Property is a building containing dwellings.
type Property struct {
	ID      string
	OrgID   string
	OwnerID string
	Name    string
	Address string
	Status  string
}

// Dwelling is a unit within a property that houses participants.
type Dwelling struct {
	ID         string
	OrgID      string
	PropertyID string
	Name       string
	Status     string
}

// MaintenanceRequest is a reported fault against a property or dwelling.
type MaintenanceRequest struct {
	ID         string
	OrgID      string
	PropertyID string
	DwellingID string
	Title      string
	Priority   string
	Status     string
}

// PreventativeSchedule is a recurring maintenance or compliance task.
// Specialist schedules require an accredited contractor and are tracked
// under their own alert family.
type PreventativeSchedule struct {
	ID          string
	OrgID       string
	PropertyID  string
	TaskName    string
	Active      bool
	Specialist  bool
	NextDueDate *time.Time
}

// Certification is an SDA compliance certification with an expiry.
type Certification struct {
	ID         string
	OrgID      string
	PropertyID string
	Name       string
	Status     string
	ExpiryDate *time.Time
}

// Complaint is a received complaint subject to an acknowledgment deadline.
type Complaint struct {
	ID             string
	OrgID          string
	Reference      string
	Status         string
	ReceivedAt     time.Time
	AckDueAt       *time.Time // overrides the default ReceivedAt+24h deadline
	AcknowledgedAt *time.Time
}

// Participant is a person housed and supported by the provider.
type Participant struct {
	ID            string
	OrgID         string
	Name          string
	Status        string
	NDISNumber    string
	DwellingID    string
	ConsentStatus string
	ConsentExpiry *time.Time
	CreatedAt     time.Time
}

// Inspection is a scheduled property inspection.
type Inspection struct {
	ID            string
	OrgID         string
	PropertyID    string
	Status        string
	ScheduledDate time.Time
}

// Owner is a property owner receiving monthly disbursements.
type Owner struct {
	ID    string
	OrgID string
	Name  string
}

// OwnerPayment is a monthly disbursement owed to an owner.
type OwnerPayment struct {
	ID      string
	OrgID   string
	OwnerID string
	Year    int
	Month   time.Month
	Amount  decimal.Decimal
	Status  string
}

// User is a platform user eligible for alert notifications.
type User struct {
	ID     string
	Name   string
	Email  string
	Phone  string
	Active bool
}

// Directory bundles read access to every monitored collection. Each rule
// performs a full scan of its collection; predicates apply in the evaluator.
type Directory interface {
	Plans(ctx context.Context) ([]Plan, error)
	Documents(ctx context.Context) ([]Document, error)
	Dwellings(ctx context.Context) ([]Dwelling, error)
	MaintenanceRequests(ctx context.Context) ([]MaintenanceRequest, error)
	Schedules(ctx context.Context) ([]PreventativeSchedule, error)
	Certifications(ctx context.Context) ([]Certification, error)
	Complaints(ctx context.Context) ([]Complaint, error)
	Participants(ctx context.Context) ([]Participant, error)
	Inspections(ctx context.Context) ([]Inspection, error)
	PendingOwnerPayments(ctx context.Context, year int, month time.Month) ([]OwnerPayment, error)

	Property(ctx context.Context, id string) (*Property, bool, error)
	Dwelling(ctx context.Context, id string) (*Dwelling, bool, error)
	Participant(ctx context.Context, id string) (*Participant, bool, error)
	Owner(ctx context.Context, id string) (*Owner, bool, error)
}

// Users lists platform users for notification fan-out.
type Users interface {
	ActiveUsers(ctx context.Context) ([]User, error)
}
