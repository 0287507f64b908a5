// Package memsource provides an in-memory source.Directory backed by plain
// slices. Suitable for dev and tests.
package memsource

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/beacon/internal/source"
)

// Directory holds collection snapshots in memory. Populate the exported row
// slices before handing it to the engine; concurrent mutation needs the
// caller's own synchronization.
type Directory struct {
	mu sync.RWMutex

	PlanRows          []source.Plan
	DocumentRows      []source.Document
	PropertyRows      []source.Property
	DwellingRows      []source.Dwelling
	RequestRows       []source.MaintenanceRequest
	ScheduleRows      []source.PreventativeSchedule
	CertificationRows []source.Certification
	ComplaintRows     []source.Complaint
	ParticipantRows   []source.Participant
	InspectionRows    []source.Inspection
	OwnerRows         []source.Owner
	PaymentRows       []source.OwnerPayment
	UserRows          []source.User
}

// New initializes an empty in-memory Directory.
func New() *Directory {
	return &Directory{}
}

func (d *Directory) Plans(_ context.Context) ([]source.Plan, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Plan(nil), d.PlanRows...), nil
}

func (d *Directory) Documents(_ context.Context) ([]source.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Document(nil), d.DocumentRows...), nil
}

func (d *Directory) Dwellings(_ context.Context) ([]source.Dwelling, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Dwelling(nil), d.DwellingRows...), nil
}

func (d *Directory) MaintenanceRequests(_ context.Context) ([]source.MaintenanceRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.MaintenanceRequest(nil), d.RequestRows...), nil
}

func (d *Directory) Schedules(_ context.Context) ([]source.PreventativeSchedule, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.PreventativeSchedule(nil), d.ScheduleRows...), nil
}

func (d *Directory) Certifications(_ context.Context) ([]source.Certification, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Certification(nil), d.CertificationRows...), nil
}

func (d *Directory) Complaints(_ context.Context) ([]source.Complaint, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Complaint(nil), d.ComplaintRows...), nil
}

func (d *Directory) Participants(_ context.Context) ([]source.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Participant(nil), d.ParticipantRows...), nil
}

func (d *Directory) Inspections(_ context.Context) ([]source.Inspection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]source.Inspection(nil), d.InspectionRows...), nil
}

func (d *Directory) PendingOwnerPayments(_ context.Context, year int, month time.Month) ([]source.OwnerPayment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []source.OwnerPayment
	for _, p := range d.PaymentRows {
		if p.Year == year && p.Month == month && p.Status == source.PaymentStatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *Directory) Property(_ context.Context, id string) (*source.Property, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.PropertyRows {
		if d.PropertyRows[i].ID == id {
			cp := d.PropertyRows[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (d *Directory) Dwelling(_ context.Context, id string) (*source.Dwelling, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.DwellingRows {
		if d.DwellingRows[i].ID == id {
			cp := d.DwellingRows[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (d *Directory) Participant(_ context.Context, id string) (*source.Participant, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.ParticipantRows {
		if d.ParticipantRows[i].ID == id {
			cp := d.ParticipantRows[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (d *Directory) Owner(_ context.Context, id string) (*source.Owner, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.OwnerRows {
		if d.OwnerRows[i].ID == id {
			cp := d.OwnerRows[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (d *Directory) ActiveUsers(_ context.Context) ([]source.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []source.User
	for _, u := range d.UserRows {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}
