package seed

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hackgods/clinic-local-store/internal/db"
	"github.com/hackgods/clinic-local-store/internal/records"
)

func newRepo(t *testing.T) *records.SQLRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	repo, err := records.NewSQLRepository(ctx, conn, db.SQLite)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

type snapshot struct {
	Doctors      []records.Doctor
	Appointments []records.Appointment
}

func take(t *testing.T, repo records.Repository) snapshot {
	t.Helper()
	ctx := context.Background()
	ds, err := repo.GetAllDoctors(ctx)
	if err != nil {
		t.Fatalf("GetAllDoctors: %v", err)
	}
	as, err := repo.GetAllAppointments(ctx)
	if err != nil {
		t.Fatalf("GetAllAppointments: %v", err)
	}
	return snapshot{ds, as}
}

func TestReferenceParses(t *testing.T) {
	ds, err := Reference()
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if len(ds.Doctors) != 4 || len(ds.Appointments) != 3 {
		t.Fatalf("got %d doctors, %d appointments", len(ds.Doctors), len(ds.Appointments))
	}
	j := ds.Appointments[2]
	if j.PatientName != "Juanin" || j.Reason != "Vacunación" || j.Status != records.StatusPending {
		t.Errorf("third appointment = %+v", j)
	}
	if j.Date.Hour() != 9 || j.Date.Minute() != 15 {
		t.Errorf("third appointment date = %v", j.Date)
	}
}

func TestParseRejectsBadDoctorPosition(t *testing.T) {
	raw := []byte(`
doctors:
  - name: Dr. Mario
appointments:
  - patientName: Tulio
    doctor: 2
    date: "2025-03-10T10:00:00"
    status: pendiente
`)
	if _, err := parse(raw); err == nil {
		t.Error("parse accepted a doctor position past the list")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if err := ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	first := take(t, repo)

	if err := ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	second := take(t, repo)

	if len(first.Doctors) != 4 || len(first.Appointments) != 3 {
		t.Fatalf("after reset: %d doctors, %d appointments", len(first.Doctors), len(first.Appointments))
	}
	if !reflect.DeepEqual(first.Doctors, second.Doctors) {
		t.Errorf("doctors differ across resets:\n%+v\n%+v", first.Doctors, second.Doctors)
	}
	for i := range first.Appointments {
		a, b := first.Appointments[i], second.Appointments[i]
		if a.ID != b.ID || a.DoctorID != b.DoctorID || a.PatientName != b.PatientName || !a.Date.Equal(b.Date) {
			t.Errorf("appointment %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestResetClearsExtraRecords(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.AddPatient(ctx, records.Patient{Name: "Tulio"}); err != nil {
		t.Fatalf("AddPatient: %v", err)
	}
	if err := ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("reset: %v", err)
	}
	counts, _ := repo.Counts(ctx)
	if counts != (records.Counts{Doctors: 4, Patients: 0, Appointments: 3}) {
		t.Errorf("counts = %+v", counts)
	}
}

func TestReferenceAppointmentsPointAtTheirDoctors(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// Take ids 1..3 and free them so the doctor ids no longer start at 1.
	ids, _ := repo.BulkAddDoctors(ctx, []records.Doctor{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	for _, id := range ids {
		repo.DeleteDoctor(ctx, id)
	}

	ok, err := SeedIfEmpty(ctx, repo)
	if err != nil || !ok {
		t.Fatalf("SeedIfEmpty = %v, %v", ok, err)
	}

	snap := take(t, repo)
	byID := map[int64]string{}
	for _, d := range snap.Doctors {
		byID[d.ID] = d.Name
	}
	want := map[string]string{
		"Bodoque":   "Dr. Mario",
		"Guaripolo": "Dr. Nick Riviera",
		"Juanin":    "Dra. Ana Polo",
	}
	for _, a := range snap.Appointments {
		if got := byID[a.DoctorID]; got != want[a.PatientName] {
			t.Errorf("%s -> %q, want %q", a.PatientName, got, want[a.PatientName])
		}
	}
}

func TestAppointmentsByFirstDoctor(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	if err := ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got, err := repo.GetAppointmentsByDoctor(ctx, 1)
	if err != nil {
		t.Fatalf("GetAppointmentsByDoctor: %v", err)
	}
	if len(got) != 1 || got[0].PatientName != "Bodoque" {
		t.Errorf("appointments for doctor 1 = %+v", got)
	}
}

func TestDeleteReferenceAppointment(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	if err := ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("reset: %v", err)
	}

	all, _ := repo.GetAllAppointments(ctx)
	var target int64
	for _, a := range all {
		if a.PatientName == "Guaripolo" {
			target = a.ID
		}
	}
	if err := repo.DeleteAppointment(ctx, target); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}

	after, _ := repo.GetAllAppointments(ctx)
	if len(after) != len(all)-1 {
		t.Errorf("len after delete = %d, want %d", len(after), len(all)-1)
	}
	if err := repo.DeleteAppointment(ctx, target); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSeedIfEmptyLeavesExistingData(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.AddDoctor(ctx, records.Doctor{Name: "Dr. Tulio"}); err != nil {
		t.Fatalf("AddDoctor: %v", err)
	}

	ok, err := SeedIfEmpty(ctx, repo)
	if err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if ok {
		t.Error("SeedIfEmpty seeded a non-empty store")
	}
	if snap := take(t, repo); len(snap.Doctors) != 1 || len(snap.Appointments) != 0 {
		t.Errorf("store changed: %+v", snap)
	}
}

func TestFake(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if err := Fake(ctx, repo, FakeCounts{Doctors: 3, Patients: 5, Appointments: 20}, 42); err != nil {
		t.Fatalf("Fake: %v", err)
	}
	counts, _ := repo.Counts(ctx)
	if counts != (records.Counts{Doctors: 3, Patients: 5, Appointments: 20}) {
		t.Errorf("counts = %+v", counts)
	}

	snap := take(t, repo)
	known := map[int64]bool{}
	for _, d := range snap.Doctors {
		known[d.ID] = true
	}
	for _, a := range snap.Appointments {
		if !known[a.DoctorID] {
			t.Errorf("appointment %d points at unknown doctor %d", a.ID, a.DoctorID)
		}
	}
}

func TestFakeAppointmentsNeedDoctors(t *testing.T) {
	repo := newRepo(t)
	err := Fake(context.Background(), repo, FakeCounts{Appointments: 1}, 1)
	if !errors.Is(err, records.ErrValidation) {
		t.Errorf("Fake = %v, want ErrValidation", err)
	}
}
