package records

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("invalid record")
)

// Repository is the durable record store. Get*ByID returns (nil, nil) when
// the id has no record; Update* and Delete* return ErrNotFound instead.
// Driver failures match storage.ErrUnavailable.
type Repository interface {
	GetAllDoctors(ctx context.Context) ([]Doctor, error)
	GetDoctorByID(ctx context.Context, id int64) (*Doctor, error)
	AddDoctor(ctx context.Context, d Doctor) (int64, error)
	BulkAddDoctors(ctx context.Context, ds []Doctor) ([]int64, error)
	UpdateDoctor(ctx context.Context, id int64, p DoctorPatch) error
	DeleteDoctor(ctx context.Context, id int64) error

	GetAllPatients(ctx context.Context) ([]Patient, error)
	GetPatientByID(ctx context.Context, id int64) (*Patient, error)
	AddPatient(ctx context.Context, p Patient) (int64, error)
	BulkAddPatients(ctx context.Context, ps []Patient) ([]int64, error)
	UpdatePatient(ctx context.Context, id int64, p PatientPatch) error
	DeletePatient(ctx context.Context, id int64) error

	GetAllAppointments(ctx context.Context) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error)
	AddAppointment(ctx context.Context, a Appointment) (int64, error)
	BulkAddAppointments(ctx context.Context, as []Appointment) ([]int64, error)
	UpdateAppointment(ctx context.Context, id int64, p AppointmentPatch) error
	DeleteAppointment(ctx context.Context, id int64) error

	// Indexed lookup on appointments.doctor_id.
	GetAppointmentsByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)

	Counts(ctx context.Context) (Counts, error)

	// Wipe deletes every record in all three collections and restarts the
	// id generators. Only the explicit reset path should call it.
	Wipe(ctx context.Context) error
}
