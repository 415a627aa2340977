package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/clinic-local-store/internal/records"
	"github.com/hackgods/clinic-local-store/internal/search"
)

// Accepted date forms, most specific first. Dates without a zone are local
// wall-clock times, the way the reference data writes them.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// Date decodes RFC 3339 or a zone-less local timestamp.
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date %q is not a timestamp", s)
}

type CreateAppointmentRequest struct {
	PatientName string `json:"patientName"`
	DoctorID    int64  `json:"doctorId"`
	Date        Date   `json:"date"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
}

// toAppointment defaults a missing status to pending.
func (req CreateAppointmentRequest) toAppointment() records.Appointment {
	status := records.Status(req.Status)
	if status == "" {
		status = records.StatusPending
	}
	return records.Appointment{
		PatientName: req.PatientName,
		DoctorID:    req.DoctorID,
		Date:        req.Date.Time,
		Reason:      req.Reason,
		Status:      status,
	}
}

type UpdateAppointmentRequest struct {
	PatientName *string `json:"patientName,omitempty"`
	DoctorID    *int64  `json:"doctorId,omitempty"`
	Date        *Date   `json:"date,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (req UpdateAppointmentRequest) toPatch() records.AppointmentPatch {
	p := records.AppointmentPatch{
		PatientName: req.PatientName,
		DoctorID:    req.DoctorID,
		Reason:      req.Reason,
	}
	if req.Date != nil {
		p.Date = &req.Date.Time
	}
	if req.Status != nil {
		s := records.Status(*req.Status)
		p.Status = &s
	}
	return p
}

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	PatientName string    `json:"patientName"`
	DoctorID    int64     `json:"doctorId"`
	DoctorName  string    `json:"doctorName,omitempty"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
}

// newAppointmentResponse reports the date in local time, the zone a
// zone-less request date is read in.
func newAppointmentResponse(a records.Appointment, doctor search.DoctorRef) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientName: a.PatientName,
		DoctorID:    a.DoctorID,
		DoctorName:  doctor.NameOr(""),
		Date:        a.Date.Local(),
		Reason:      a.Reason,
		Status:      string(a.Status),
	}
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Count        int                   `json:"count"`
}

type SearchTermRequest struct {
	Term string `json:"term"`
}

type SearchHistoryResponse struct {
	SearchHistory []string `json:"searchHistory"`
}

type LastPageRequest struct {
	Page string `json:"page"`
}

type SetFieldRequest struct {
	Value any `json:"value"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Notice  string `json:"notice,omitempty"`
}
