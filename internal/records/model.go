package records

import (
	"time"
)

// Status values are stored verbatim as the clinic UI spells them.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusConfirmed Status = "confirmada"
	StatusCompleted Status = "completada"
	StatusCancelled Status = "cancelada"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Doctor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Patient struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	History string `json:"history"`
}

// Appointment points at its doctor by id only. The doctor may have been
// deleted since; see search.DoctorIndex for resolution.
type Appointment struct {
	ID          int64     `json:"id"`
	PatientName string    `json:"patientName"`
	DoctorID    int64     `json:"doctorId"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
	Status      Status    `json:"status"`
}

// Patches carry only the fields to change. A nil field is left untouched.

type DoctorPatch struct {
	Name      *string `json:"name,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type PatientPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	History *string `json:"history,omitempty"`
}

type AppointmentPatch struct {
	PatientName *string    `json:"patientName,omitempty"`
	DoctorID    *int64     `json:"doctorId,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

// Counts is the number of rows per collection.
type Counts struct {
	Doctors      int
	Patients     int
	Appointments int
}

func (c Counts) Empty() bool {
	return c.Doctors == 0 && c.Patients == 0 && c.Appointments == 0
}
