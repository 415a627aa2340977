// Package clinic is what the appointment views talk to: it loads a
// consistent snapshot, runs searches against it and applies changes to the
// record store and the session.
package clinic

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hackgods/clinic-local-store/internal/records"
	"github.com/hackgods/clinic-local-store/internal/search"
	"github.com/hackgods/clinic-local-store/internal/session"
)

const (
	EventAppointmentCreated = "APPOINTMENT_CREATED"
	EventAppointmentUpdated = "APPOINTMENT_UPDATED"
	EventAppointmentDeleted = "APPOINTMENT_DELETED"
)

type Service struct {
	repo    records.Repository
	session *session.Store
}

func NewService(repo records.Repository, sess *session.Store) *Service {
	return &Service{
		repo:    repo,
		session: sess,
	}
}

// View is one loaded snapshot of the appointment list.
type View struct {
	Doctors      []records.Doctor
	Appointments []records.Appointment
	Index        search.DoctorIndex
	Session      session.State
}

// Load reads doctors, appointments and session state concurrently. If ctx
// ends before the reads finish, the partial result is dropped and ctx.Err()
// is returned.
func (s *Service) Load(ctx context.Context) (*View, error) {
	v := &View{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds, err := s.repo.GetAllDoctors(gctx)
		if err != nil {
			return fmt.Errorf("load doctors: %w", err)
		}
		v.Doctors = ds
		return nil
	})
	g.Go(func() error {
		as, err := s.repo.GetAllAppointments(gctx)
		if err != nil {
			return fmt.Errorf("load appointments: %w", err)
		}
		v.Appointments = as
		return nil
	})
	g.Go(func() error {
		st, err := s.session.Get(gctx)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		v.Session = st
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	v.Index = search.IndexDoctors(v.Doctors)
	return v, nil
}

// Search filters the snapshot without touching storage.
func (v *View) Search(term string) []search.Row {
	return search.Join(search.Filter(v.Appointments, v.Index, term), v.Index)
}

// Rows returns every appointment in the snapshot joined with its doctor.
func (v *View) Rows() []search.Row {
	return search.Join(v.Appointments, v.Index)
}

// SubmitSearch records a committed search and returns the updated history.
// A blank term only returns the current history.
func (s *Service) SubmitSearch(ctx context.Context, term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		st, err := s.session.Get(ctx)
		return st.SearchHistory, err
	}
	st, err := s.session.AddSearchTerm(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("add search term: %w", err)
	}
	return st.SearchHistory, nil
}

func (s *Service) ClearSearchHistory(ctx context.Context) error {
	if _, err := s.session.ClearSearchHistory(ctx); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}

func (s *Service) Doctors(ctx context.Context) ([]records.Doctor, error) {
	return s.repo.GetAllDoctors(ctx)
}

func (s *Service) AddAppointment(ctx context.Context, a records.Appointment) (*records.Appointment, error) {
	id, err := s.repo.AddAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("add appointment: %w", err)
	}
	a.ID = id
	logEvent(EventAppointmentCreated, id, "doctor_id=%d status=%s", a.DoctorID, a.Status)
	return &a, nil
}

// UpdateAppointment applies p and returns the stored result.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, p records.AppointmentPatch) (*records.Appointment, error) {
	if err := s.repo.UpdateAppointment(ctx, id, p); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("reload appointment %d: %w", id, records.ErrNotFound)
	}
	logEvent(EventAppointmentUpdated, id, "status=%s", a.Status)
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	logEvent(EventAppointmentDeleted, id, "")
	return nil
}

// AppointmentsForDoctor returns the appointments that reference doctorID.
// The doctor record itself may be gone; an id nothing references gives an
// empty list.
func (s *Service) AppointmentsForDoctor(ctx context.Context, doctorID int64) ([]records.Appointment, error) {
	as, err := s.repo.GetAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load appointments for doctor: %w", err)
	}
	return as, nil
}

func logEvent(event string, id int64, format string, args ...any) {
	if format == "" {
		log.Printf("event=%s appointment_id=%d", event, id)
		return
	}
	log.Printf("event=%s appointment_id=%d "+format, append([]any{event, id}, args...)...)
}
