package alert

import (
	"context"

	"github.com/linnemanlabs/go-core/xerrors"
)

// ErrNotFound is returned by lifecycle operations when the alert does not
// exist or belongs to a different organization. Callers cannot distinguish
// the two cases.
var ErrNotFound = xerrors.New("alert not found")

// ErrTerminal is returned when a transition is attempted on a resolved or
// dismissed alert.
var ErrTerminal = xerrors.New("alert is in a terminal status")

// ErrInvalidTransition is returned for transitions the state machine does not
// permit (e.g. acknowledging an already-acknowledged alert).
var ErrInvalidTransition = xerrors.New("invalid status transition")

// Filter narrows a List call. Zero-valued fields match everything.
type Filter struct {
	OrgID    string
	Status   Status
	Type     Type
	Severity Severity
	Entity   Links // match alerts whose links contain every populated ID
}

// Store is the persistence interface for alerts.
//
// InsertIfAbsent must be atomic with respect to the at-most-one-active
// invariant: concurrent inserts of the same (Type, DedupKey) may not both
// report inserted=true.
type Store interface {
	InsertIfAbsent(ctx context.Context, a *Alert) (inserted bool, err error)
	Get(ctx context.Context, id string) (*Alert, bool, error)
	List(ctx context.Context, f Filter) ([]*Alert, error)
	Update(ctx context.Context, a *Alert) error
	Delete(ctx context.Context, id string) (bool, error)
	CountActive(ctx context.Context) (map[Severity]int, error)
}
