// Package seed loads the reference dataset and generates demo data.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hackgods/clinic-local-store/internal/records"
)

//go:embed reference.yaml
var referenceYAML []byte

// Local wall-clock layout used by the reference appointments.
const dateLayout = "2006-01-02T15:04:05"

type referenceFile struct {
	Doctors      []referenceDoctor      `yaml:"doctors"`
	Appointments []referenceAppointment `yaml:"appointments"`
}

type referenceDoctor struct {
	Name      string `yaml:"name"`
	Specialty string `yaml:"specialty"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
}

type referenceAppointment struct {
	PatientName string `yaml:"patientName"`
	Doctor      int    `yaml:"doctor"`
	Date        string `yaml:"date"`
	Reason      string `yaml:"reason"`
	Status      string `yaml:"status"`
}

// Dataset is the parsed reference data. Appointment.DoctorID holds the
// 1-based position of the doctor in Doctors until it is inserted.
type Dataset struct {
	Doctors      []records.Doctor
	Appointments []records.Appointment
}

// Reference parses the embedded dataset.
func Reference() (Dataset, error) {
	return parse(referenceYAML)
}

func parse(raw []byte) (Dataset, error) {
	var f referenceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Dataset{}, fmt.Errorf("parse reference data: %w", err)
	}

	ds := Dataset{Doctors: make([]records.Doctor, 0, len(f.Doctors))}
	for _, d := range f.Doctors {
		ds.Doctors = append(ds.Doctors, records.Doctor{
			Name:      d.Name,
			Specialty: d.Specialty,
			Email:     d.Email,
			Phone:     d.Phone,
		})
	}

	for i, a := range f.Appointments {
		if a.Doctor < 1 || a.Doctor > len(ds.Doctors) {
			return Dataset{}, fmt.Errorf("reference appointment %d: doctor position %d out of range", i+1, a.Doctor)
		}
		date, err := time.ParseInLocation(dateLayout, a.Date, time.Local)
		if err != nil {
			return Dataset{}, fmt.Errorf("reference appointment %d: %w", i+1, err)
		}
		ds.Appointments = append(ds.Appointments, records.Appointment{
			PatientName: a.PatientName,
			DoctorID:    int64(a.Doctor),
			Date:        date,
			Reason:      a.Reason,
			Status:      records.Status(a.Status),
		})
	}
	return ds, nil
}

// ResetToReferenceData wipes every collection and loads the reference
// dataset. This is destructive.
func ResetToReferenceData(ctx context.Context, repo records.Repository) error {
	ds, err := Reference()
	if err != nil {
		return err
	}
	if err := repo.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	if err := insert(ctx, repo, ds); err != nil {
		return err
	}
	log.Printf("seed=reset doctors=%d appointments=%d", len(ds.Doctors), len(ds.Appointments))
	return nil
}

// SeedIfEmpty loads the reference dataset only when all three collections
// are empty. It reports whether anything was inserted.
func SeedIfEmpty(ctx context.Context, repo records.Repository) (bool, error) {
	counts, err := repo.Counts(ctx)
	if err != nil {
		return false, fmt.Errorf("count records: %w", err)
	}
	if !counts.Empty() {
		return false, nil
	}

	ds, err := Reference()
	if err != nil {
		return false, err
	}
	if err := insert(ctx, repo, ds); err != nil {
		return false, err
	}
	log.Printf("seed=if-empty doctors=%d appointments=%d", len(ds.Doctors), len(ds.Appointments))
	return true, nil
}

// insert adds the doctors first and rewrites each appointment's doctor
// position to the id the store assigned.
func insert(ctx context.Context, repo records.Repository, ds Dataset) error {
	ids, err := repo.BulkAddDoctors(ctx, ds.Doctors)
	if err != nil {
		return fmt.Errorf("insert reference doctors: %w", err)
	}

	appts := make([]records.Appointment, len(ds.Appointments))
	for i, a := range ds.Appointments {
		a.DoctorID = ids[a.DoctorID-1]
		appts[i] = a
	}
	if _, err := repo.BulkAddAppointments(ctx, appts); err != nil {
		return fmt.Errorf("insert reference appointments: %w", err)
	}
	return nil
}
