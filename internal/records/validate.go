package records

import (
	"fmt"
	"strings"
)

// ValidationError names the first field that failed.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(entity, field, reason string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (d Doctor) Validate() error {
	if blank(d.Name) {
		return invalid("doctor", "name", "is required")
	}
	return nil
}

func (p Patient) Validate() error {
	if blank(p.Name) {
		return invalid("patient", "name", "is required")
	}
	return nil
}

func (a Appointment) Validate() error {
	switch {
	case blank(a.PatientName):
		return invalid("appointment", "patientName", "is required")
	case a.DoctorID <= 0:
		return invalid("appointment", "doctorId", "must be positive")
	case a.Date.IsZero():
		return invalid("appointment", "date", "is required")
	case !a.Status.Valid():
		return invalid("appointment", "status", fmt.Sprintf("%q is not a known status", a.Status))
	}
	return nil
}

func (p DoctorPatch) Validate() error {
	if p.Name != nil && blank(*p.Name) {
		return invalid("doctor", "name", "cannot be blank")
	}
	return nil
}

func (p PatientPatch) Validate() error {
	if p.Name != nil && blank(*p.Name) {
		return invalid("patient", "name", "cannot be blank")
	}
	return nil
}

func (p AppointmentPatch) Validate() error {
	switch {
	case p.PatientName != nil && blank(*p.PatientName):
		return invalid("appointment", "patientName", "cannot be blank")
	case p.DoctorID != nil && *p.DoctorID <= 0:
		return invalid("appointment", "doctorId", "must be positive")
	case p.Date != nil && p.Date.IsZero():
		return invalid("appointment", "date", "cannot be zero")
	case p.Status != nil && !p.Status.Valid():
		return invalid("appointment", "status", fmt.Sprintf("%q is not a known status", *p.Status))
	}
	return nil
}
