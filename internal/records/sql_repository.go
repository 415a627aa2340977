package records

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hackgods/clinic-local-store/internal/db"
	"github.com/hackgods/clinic-local-store/internal/storage"
)

// SQLRepository implements Repository on database/sql for SQLite and Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository migrates the schema and returns a ready repository.
// The caller keeps ownership of conn and closes it.
func NewSQLRepository(ctx context.Context, conn *sql.DB, d db.Dialect) (*SQLRepository, error) {
	if err := migrate(ctx, conn, d); err != nil {
		return nil, storage.Wrap("open schema", err)
	}
	return &SQLRepository{db: conn, dialect: d}, nil
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	doctorColumns      = "id, name, specialty, email, phone"
	patientColumns     = "id, name, email, phone, address, history"
	appointmentColumns = "id, patient_name, doctor_id, date, reason, status"
)

func scanDoctor(row rowScanner) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Phone); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.History); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment
	var status string
	if err := row.Scan(&a.ID, &a.PatientName, &a.DoctorID, db.Time{T: &a.Date}, &a.Reason, &status); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func queryAll[T any](ctx context.Context, r *SQLRepository, op string, scan func(rowScanner) (*T, error), query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, storage.Wrap(op, err)
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(op, err)
	}
	return result, nil
}

func queryOne[T any](ctx context.Context, r *SQLRepository, op string, scan func(rowScanner) (*T, error), query string, args ...any) (*T, error) {
	v, err := scan(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	return v, nil
}

func (r *SQLRepository) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, r.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

func bulkInsert[T any](ctx context.Context, r *SQLRepository, op string, items []T, insert func(querier, T) (int64, error)) ([]int64, error) {
	if len(items) == 0 {
		return []int64{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := insert(tx, item)
		if err != nil {
			return nil, storage.Wrap(op, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, storage.Wrap(op, err)
	}
	return ids, nil
}

type assignment struct {
	column string
	value  any
}

// update writes only the given assignments. With none it still reports
// ErrNotFound for a missing id so callers see the same contract.
func (r *SQLRepository) update(ctx context.Context, op, table string, id int64, sets []assignment) error {
	if len(sets) == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, r.dialect.Rebind("SELECT 1 FROM "+table+" WHERE id = ?"), id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return storage.Wrap(op, err)
	}

	cols := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for _, s := range sets {
		cols = append(cols, s.column+" = ?")
		args = append(args, s.value)
	}
	args = append(args, id)

	query := "UPDATE " + table + " SET " + strings.Join(cols, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return storage.Wrap(op, err)
	}
	return affected(op, res)
}

func (r *SQLRepository) delete(ctx context.Context, op, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return storage.Wrap(op, err)
	}
	return affected(op, res)
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storage.Wrap(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Doctors

func (r *SQLRepository) GetAllDoctors(ctx context.Context) ([]Doctor, error) {
	return queryAll(ctx, r, "get all doctors", scanDoctor,
		"SELECT "+doctorColumns+" FROM doctors ORDER BY id")
}

func (r *SQLRepository) GetDoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	return queryOne(ctx, r, "get doctor", scanDoctor,
		"SELECT "+doctorColumns+" FROM doctors WHERE id = ?", id)
}

func (r *SQLRepository) insertDoctor(ctx context.Context, q querier, d Doctor) (int64, error) {
	return r.insert(ctx, q,
		"INSERT INTO doctors (name, specialty, email, phone) VALUES (?, ?, ?, ?)",
		d.Name, d.Specialty, d.Email, d.Phone)
}

func (r *SQLRepository) AddDoctor(ctx context.Context, d Doctor) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	id, err := r.insertDoctor(ctx, r.db, d)
	return id, storage.Wrap("add doctor", err)
}

func (r *SQLRepository) BulkAddDoctors(ctx context.Context, ds []Doctor) ([]int64, error) {
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return bulkInsert(ctx, r, "bulk add doctors", ds, func(q querier, d Doctor) (int64, error) {
		return r.insertDoctor(ctx, q, d)
	})
}

func (r *SQLRepository) UpdateDoctor(ctx context.Context, id int64, p DoctorPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var sets []assignment
	if p.Name != nil {
		sets = append(sets, assignment{"name", *p.Name})
	}
	if p.Specialty != nil {
		sets = append(sets, assignment{"specialty", *p.Specialty})
	}
	if p.Email != nil {
		sets = append(sets, assignment{"email", *p.Email})
	}
	if p.Phone != nil {
		sets = append(sets, assignment{"phone", *p.Phone})
	}
	return r.update(ctx, "update doctor", "doctors", id, sets)
}

func (r *SQLRepository) DeleteDoctor(ctx context.Context, id int64) error {
	return r.delete(ctx, "delete doctor", "doctors", id)
}

// Patients

func (r *SQLRepository) GetAllPatients(ctx context.Context) ([]Patient, error) {
	return queryAll(ctx, r, "get all patients", scanPatient,
		"SELECT "+patientColumns+" FROM patients ORDER BY id")
}

func (r *SQLRepository) GetPatientByID(ctx context.Context, id int64) (*Patient, error) {
	return queryOne(ctx, r, "get patient", scanPatient,
		"SELECT "+patientColumns+" FROM patients WHERE id = ?", id)
}

func (r *SQLRepository) insertPatient(ctx context.Context, q querier, p Patient) (int64, error) {
	return r.insert(ctx, q,
		"INSERT INTO patients (name, email, phone, address, history) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.Email, p.Phone, p.Address, p.History)
}

func (r *SQLRepository) AddPatient(ctx context.Context, p Patient) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	id, err := r.insertPatient(ctx, r.db, p)
	return id, storage.Wrap("add patient", err)
}

func (r *SQLRepository) BulkAddPatients(ctx context.Context, ps []Patient) ([]int64, error) {
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return bulkInsert(ctx, r, "bulk add patients", ps, func(q querier, p Patient) (int64, error) {
		return r.insertPatient(ctx, q, p)
	})
}

func (r *SQLRepository) UpdatePatient(ctx context.Context, id int64, p PatientPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var sets []assignment
	if p.Name != nil {
		sets = append(sets, assignment{"name", *p.Name})
	}
	if p.Email != nil {
		sets = append(sets, assignment{"email", *p.Email})
	}
	if p.Phone != nil {
		sets = append(sets, assignment{"phone", *p.Phone})
	}
	if p.Address != nil {
		sets = append(sets, assignment{"address", *p.Address})
	}
	if p.History != nil {
		sets = append(sets, assignment{"history", *p.History})
	}
	return r.update(ctx, "update patient", "patients", id, sets)
}

func (r *SQLRepository) DeletePatient(ctx context.Context, id int64) error {
	return r.delete(ctx, "delete patient", "patients", id)
}

// Appointments

func (r *SQLRepository) GetAllAppointments(ctx context.Context) ([]Appointment, error) {
	return queryAll(ctx, r, "get all appointments", scanAppointment,
		"SELECT "+appointmentColumns+" FROM appointments ORDER BY id")
}

func (r *SQLRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	return queryOne(ctx, r, "get appointment", scanAppointment,
		"SELECT "+appointmentColumns+" FROM appointments WHERE id = ?", id)
}

func (r *SQLRepository) GetAppointmentsByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return queryAll(ctx, r, "get appointments by doctor", scanAppointment,
		"SELECT "+appointmentColumns+" FROM appointments WHERE doctor_id = ? ORDER BY id", doctorID)
}

func (r *SQLRepository) insertAppointment(ctx context.Context, q querier, a Appointment) (int64, error) {
	return r.insert(ctx, q,
		"INSERT INTO appointments (patient_name, doctor_id, date, reason, status) VALUES (?, ?, ?, ?, ?)",
		a.PatientName, a.DoctorID, r.dialect.TimeArg(a.Date), a.Reason, string(a.Status))
}

func (r *SQLRepository) AddAppointment(ctx context.Context, a Appointment) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := r.insertAppointment(ctx, r.db, a)
	return id, storage.Wrap("add appointment", err)
}

func (r *SQLRepository) BulkAddAppointments(ctx context.Context, as []Appointment) ([]int64, error) {
	for _, a := range as {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return bulkInsert(ctx, r, "bulk add appointments", as, func(q querier, a Appointment) (int64, error) {
		return r.insertAppointment(ctx, q, a)
	})
}

func (r *SQLRepository) UpdateAppointment(ctx context.Context, id int64, p AppointmentPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var sets []assignment
	if p.PatientName != nil {
		sets = append(sets, assignment{"patient_name", *p.PatientName})
	}
	if p.DoctorID != nil {
		sets = append(sets, assignment{"doctor_id", *p.DoctorID})
	}
	if p.Date != nil {
		sets = append(sets, assignment{"date", r.dialect.TimeArg(*p.Date)})
	}
	if p.Reason != nil {
		sets = append(sets, assignment{"reason", *p.Reason})
	}
	if p.Status != nil {
		sets = append(sets, assignment{"status", string(*p.Status)})
	}
	return r.update(ctx, "update appointment", "appointments", id, sets)
}

func (r *SQLRepository) DeleteAppointment(ctx context.Context, id int64) error {
	return r.delete(ctx, "delete appointment", "appointments", id)
}

// Collections

func (r *SQLRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments)
	`).Scan(&c.Doctors, &c.Patients, &c.Appointments)
	if err != nil {
		return Counts{}, storage.Wrap("count records", err)
	}
	return c, nil
}

func (r *SQLRepository) Wipe(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM appointments",
		"DELETE FROM doctors",
		"DELETE FROM patients",
		"DELETE FROM sqlite_sequence WHERE name IN ('doctors', 'appointments', 'patients')",
	}
	if r.dialect == db.Postgres {
		stmts = []string{"TRUNCATE appointments, doctors, patients RESTART IDENTITY"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Wrap("wipe records", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storage.Wrap("wipe records", err)
		}
	}
	return storage.Wrap("wipe records", tx.Commit())
}
