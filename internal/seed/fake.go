package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/clinic-local-store/internal/records"
)

// FakeCounts is how many records Fake generates per collection.
type FakeCounts struct {
	Doctors      int
	Patients     int
	Appointments int
}

var specialties = []string{
	"Cardiología",
	"Neurología",
	"Pediatría",
	"Dermatología",
	"Medicina General",
	"Traumatología",
	"Endocrinología",
	"Oftalmología",
}

var reasons = []string{
	"Chequeo rutinario",
	"Dolor de cabeza",
	"Vacunación",
	"Control",
	"Dolor de espalda",
	"Resultados de examen",
	"Alergia",
}

var statuses = []string{
	string(records.StatusPending),
	string(records.StatusConfirmed),
	string(records.StatusCompleted),
	string(records.StatusCancelled),
}

// Fake appends generated demo records. Existing data is left alone. A seed
// of 0 picks a random one; any other value reproduces the same data.
// Appointments go to the doctors created in the same call, or to the ones
// already stored when counts.Doctors is 0.
func Fake(ctx context.Context, repo records.Repository, counts FakeCounts, seed uint64) error {
	f := gofakeit.New(seed)

	doctors := make([]records.Doctor, 0, counts.Doctors)
	for i := 0; i < counts.Doctors; i++ {
		doctors = append(doctors, records.Doctor{
			Name:      "Dr. " + f.Name(),
			Specialty: f.RandomString(specialties),
			Email:     f.Email(),
			Phone:     f.Phone(),
		})
	}
	doctorIDs, err := repo.BulkAddDoctors(ctx, doctors)
	if err != nil {
		return fmt.Errorf("fake doctors: %w", err)
	}

	patients := make([]records.Patient, 0, counts.Patients)
	for i := 0; i < counts.Patients; i++ {
		patients = append(patients, records.Patient{
			Name:    f.Name(),
			Email:   f.Email(),
			Phone:   f.Phone(),
			Address: f.Street() + ", " + f.City(),
		})
	}
	if _, err := repo.BulkAddPatients(ctx, patients); err != nil {
		return fmt.Errorf("fake patients: %w", err)
	}

	if counts.Appointments > 0 && len(doctorIDs) == 0 {
		existing, err := repo.GetAllDoctors(ctx)
		if err != nil {
			return fmt.Errorf("fake appointments: %w", err)
		}
		for _, d := range existing {
			doctorIDs = append(doctorIDs, d.ID)
		}
		if len(doctorIDs) == 0 {
			return fmt.Errorf("fake appointments: no doctors to assign: %w", records.ErrValidation)
		}
	}

	now := time.Now().Truncate(time.Minute)
	appts := make([]records.Appointment, 0, counts.Appointments)
	for i := 0; i < counts.Appointments; i++ {
		appts = append(appts, records.Appointment{
			PatientName: f.Name(),
			DoctorID:    doctorIDs[f.Number(0, len(doctorIDs)-1)],
			Date:        f.DateRange(now.AddDate(0, 0, -30), now.AddDate(0, 0, 60)).Truncate(time.Minute),
			Reason:      f.RandomString(reasons),
			Status:      records.Status(f.RandomString(statuses)),
		})
	}
	if _, err := repo.BulkAddAppointments(ctx, appts); err != nil {
		return fmt.Errorf("fake appointments: %w", err)
	}

	log.Printf("seed=fake doctors=%d patients=%d appointments=%d", len(doctors), len(patients), len(appts))
	return nil
}
