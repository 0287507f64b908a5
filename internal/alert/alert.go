package alert

import (
	"strings"
	"time"
)

// Type is the closed set of alert families the engine can emit.
type Type string

const (
	TypePlanExpiry              Type = "plan_expiry"
	TypeDocumentExpiry          Type = "document_expiry"
	TypeVacancy                 Type = "vacancy"
	TypeMaintenanceDue          Type = "maintenance_due"
	TypePreventativeScheduleDue Type = "preventative_schedule_due"
	TypeCertificationExpiry     Type = "certification_expiry"
	TypeComplaintAckOverdue     Type = "complaint_acknowledgment_overdue"
	TypeConsentExpiry           Type = "consent_expiry"
	TypeConsentMissing          Type = "consent_missing"
	TypeSpecialistScheduleDue   Type = "specialist_schedule_due"
	TypeSpecialistScheduleLate  Type = "specialist_schedule_overdue"
	TypeInspectionUpcoming      Type = "inspection_upcoming"
	TypeProfileIncomplete       Type = "profile_incomplete"
	TypeOwnerPaymentDue         Type = "owner_payment_due"
	TypePaymentVariance         Type = "payment_variance"
)

// Severity ranks an alert's urgency.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns the sort weight for a severity (higher is more urgent).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Status tracks where an alert is in its lifecycle.
type Status string

const (
	// StatusActive means the underlying condition holds and nobody has acted.
	StatusActive Status = "active"

	// StatusAcknowledged means a human has seen the alert; non-terminal.
	StatusAcknowledged Status = "acknowledged"

	// StatusResolved means the condition was addressed; terminal.
	StatusResolved Status = "resolved"

	// StatusDismissed means the alert was waved off; terminal.
	StatusDismissed Status = "dismissed"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// DedupStrategy selects how a candidate's dedup key is derived.
type DedupStrategy string

const (
	// DedupTuple keys on the full linked-entity tuple.
	DedupTuple DedupStrategy = "tuple"

	// DedupTitle keys on the literal title string.
	DedupTitle DedupStrategy = "title"
)

// Links is the sparse set of foreign keys describing what an alert is about.
// At most a small subset is populated per alert type.
type Links struct {
	ParticipantID        string `json:"participant_id,omitempty"`
	PropertyID           string `json:"property_id,omitempty"`
	DwellingID           string `json:"dwelling_id,omitempty"`
	MaintenanceRequestID string `json:"maintenance_request_id,omitempty"`
	ScheduleID           string `json:"schedule_id,omitempty"`
	PlanID               string `json:"plan_id,omitempty"`
	OwnerID              string `json:"owner_id,omitempty"`
}

// tupleKey joins all seven linked IDs positionally; absent fields stay empty
// so (absent == absent) matches, mirroring the tuple comparison contract.
func (l Links) tupleKey() string {
	return strings.Join([]string{
		l.ParticipantID, l.PropertyID, l.DwellingID,
		l.MaintenanceRequestID, l.ScheduleID, l.PlanID, l.OwnerID,
	}, "|")
}

// Matches reports whether every populated field of the filter equals the
// corresponding field of l. An empty filter matches everything.
func (l Links) Matches(f Links) bool {
	match := func(want, got string) bool { return want == "" || want == got }
	return match(f.ParticipantID, l.ParticipantID) &&
		match(f.PropertyID, l.PropertyID) &&
		match(f.DwellingID, l.DwellingID) &&
		match(f.MaintenanceRequestID, l.MaintenanceRequestID) &&
		match(f.ScheduleID, l.ScheduleID) &&
		match(f.PlanID, l.PlanID) &&
		match(f.OwnerID, l.OwnerID)
}

// Alert is a materialized monitoring finding with a lifecycle.
type Alert struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id,omitempty"`

	Type     Type     `json:"alert_type"`
	Severity Severity `json:"severity"`

	Title   string `json:"title"`
	Message string `json:"message"`

	Links Links `json:"links"`

	// DedupKey is computed once at candidate time and persisted; the store
	// guarantees at most one active alert per (Type, DedupKey).
	DedupKey string `json:"-"`

	TriggerDate time.Time  `json:"trigger_date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Status         Status     `json:"status"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// Candidate is an ephemeral alert produced by a rule evaluator for one
// scanned record. It carries all Alert fields except id, created-at and
// status, which materialization fills in.
type Candidate struct {
	OrgID    string
	Type     Type
	Severity Severity
	Title    string
	Message  string
	Links    Links

	TriggerDate time.Time
	DueDate     *time.Time

	Dedup DedupStrategy

	// DedupQualifier is appended to tuple keys by rules whose uniqueness
	// scope is narrower than the linked tuple (payment variance keys per
	// payment date).
	DedupQualifier string
}

// DedupKey derives the canonical dedup key for the candidate's strategy.
func (c Candidate) DedupKey() string {
	if c.Dedup == DedupTitle {
		return c.Title
	}
	key := c.Links.tupleKey()
	if c.DedupQualifier != "" {
		key += "|" + c.DedupQualifier
	}
	return key
}
