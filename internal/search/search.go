// Package search filters appointments for the list views.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hackgods/clinic-local-store/internal/records"
)

// DoctorIndex resolves doctor ids for one loaded snapshot.
type DoctorIndex map[int64]records.Doctor

func IndexDoctors(doctors []records.Doctor) DoctorIndex {
	idx := make(DoctorIndex, len(doctors))
	for _, d := range doctors {
		idx[d.ID] = d
	}
	return idx
}

// DoctorRef is an appointment's reference to its doctor. The doctor may be
// missing from the snapshot.
type DoctorRef struct {
	ID     int64
	doctor *records.Doctor
}

func (idx DoctorIndex) Resolve(id int64) DoctorRef {
	ref := DoctorRef{ID: id}
	if d, ok := idx[id]; ok {
		ref.doctor = &d
	}
	return ref
}

func (r DoctorRef) Doctor() (records.Doctor, bool) {
	if r.doctor == nil {
		return records.Doctor{}, false
	}
	return *r.doctor, true
}

// NameOr returns the doctor's name, or fallback when the reference dangles.
func (r DoctorRef) NameOr(fallback string) string {
	if r.doctor == nil {
		return fallback
	}
	return r.doctor.Name
}

// Filter keeps the appointments whose patient name, doctor name or reason
// contains term, ignoring case. Order is preserved. An empty term keeps
// everything.
func Filter(appts []records.Appointment, idx DoctorIndex, term string) []records.Appointment {
	m := NewMatcher(term)
	out := make([]records.Appointment, 0, len(appts))
	for _, a := range appts {
		if m.Match(a, idx) {
			out = append(out, a)
		}
	}
	return out
}

// Matcher holds a folded search term. It is not safe for concurrent use.
type Matcher struct {
	caser cases.Caser
	term  string
}

func NewMatcher(term string) *Matcher {
	c := cases.Fold()
	return &Matcher{caser: c, term: c.String(term)}
}

func (m *Matcher) Match(a records.Appointment, idx DoctorIndex) bool {
	if m.term == "" {
		return true
	}
	if m.contains(a.PatientName) || m.contains(a.Reason) {
		return true
	}
	if d, ok := idx.Resolve(a.DoctorID).Doctor(); ok {
		return m.contains(d.Name)
	}
	return false
}

func (m *Matcher) contains(s string) bool {
	return strings.Contains(m.caser.String(s), m.term)
}

// Row is an appointment joined with its doctor for display.
type Row struct {
	Appointment records.Appointment
	Doctor      DoctorRef
}

func Join(appts []records.Appointment, idx DoctorIndex) []Row {
	rows := make([]Row, len(appts))
	for i, a := range appts {
		rows[i] = Row{Appointment: a, Doctor: idx.Resolve(a.DoctorID)}
	}
	return rows
}
