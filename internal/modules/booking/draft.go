package booking

import (
	"sort"

	"libportal/internal/domain"
)

// Draft is the working state of one open reservation dialog. Its concrete
// type is fixed by the target kind: *BookDraft or *RoomDraft.
type Draft interface {
	Kind() domain.TargetKind
	Complete() bool
	clone() Draft
}

// BookDraft is a loan over a range of whole days.
type BookDraft struct {
	Range       *domain.DateRange
	Unavailable map[domain.Date]struct{}
}

func (d *BookDraft) Kind() domain.TargetKind { return domain.TargetBook }

func (d *BookDraft) Complete() bool { return d.Range != nil }

// Overlaps reports whether any day of r has no copy left.
func (d *BookDraft) Overlaps(r domain.DateRange) bool {
	for day := range d.Unavailable {
		if r.Contains(day) {
			return true
		}
	}
	return false
}

func (d *BookDraft) UnavailableDates() []domain.Date {
	out := make([]domain.Date, 0, len(d.Unavailable))
	for day := range d.Unavailable {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (d *BookDraft) clone() Draft {
	c := &BookDraft{Unavailable: make(map[domain.Date]struct{}, len(d.Unavailable))}
	if d.Range != nil {
		r := *d.Range
		c.Range = &r
	}
	for day := range d.Unavailable {
		c.Unavailable[day] = struct{}{}
	}
	return c
}

// RoomDraft is one fixed slot on one day; equipment uses it too.
type RoomDraft struct {
	Date     *domain.Date
	Slot     *domain.Slot
	Occupied map[string]struct{}
}

func (d *RoomDraft) Kind() domain.TargetKind { return domain.TargetRoom }

func (d *RoomDraft) Complete() bool { return d.Date != nil && d.Slot != nil }

func (d *RoomDraft) IsOccupied(slotID string) bool {
	_, ok := d.Occupied[slotID]
	return ok
}

func (d *RoomDraft) clone() Draft {
	c := &RoomDraft{Occupied: make(map[string]struct{}, len(d.Occupied))}
	if d.Date != nil {
		v := *d.Date
		c.Date = &v
	}
	if d.Slot != nil {
		v := *d.Slot
		c.Slot = &v
	}
	for id := range d.Occupied {
		c.Occupied[id] = struct{}{}
	}
	return c
}

func newDraft(kind domain.TargetKind) Draft {
	if kind == domain.TargetBook {
		return &BookDraft{Unavailable: map[domain.Date]struct{}{}}
	}
	return &RoomDraft{Occupied: map[string]struct{}{}}
}
