package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/search"
)

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.Doctors(r.Context())
		if err != nil {
			handleError(w, clinic.OpLoad, err)
			return
		}
		writeJSON(w, http.StatusOK, doctors)
	}
}

func doctorAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "invalid_doctor_id")
		if !ok {
			return
		}

		appts, err := svc.AppointmentsForDoctor(r.Context(), id)
		if err != nil {
			handleError(w, clinic.OpDoctorAppointments, err)
			return
		}

		doctors, err := svc.Doctors(r.Context())
		if err != nil {
			handleError(w, clinic.OpDoctorAppointments, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(search.Join(appts, search.IndexDoctors(doctors))))
	}
}

// listAppointmentsHandler serves the appointment list, filtered by ?q=.
// Filtering does not record the term; committed searches go through
// POST /session/search-history.
func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Load(r.Context())
		if err != nil {
			handleError(w, clinic.OpLoad, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(view.Search(r.URL.Query().Get("q"))))
	}
}

func createAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		appt, err := svc.AddAppointment(r.Context(), req.toAppointment())
		if err != nil {
			handleError(w, clinic.OpAddAppointment, err)
			return
		}
		writeJSON(w, http.StatusCreated, newAppointmentResponse(*appt, resolveDoctor(r.Context(), svc, appt.DoctorID)))
	}
}

func updateAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "invalid_appointment_id")
		if !ok {
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), id, req.toPatch())
		if err != nil {
			handleError(w, clinic.OpUpdateAppointment, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentResponse(*appt, resolveDoctor(r.Context(), svc, appt.DoctorID)))
	}
}

func deleteAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			handleError(w, clinic.OpDeleteAppointment, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// resolveDoctor looks up the doctor for a single-appointment response. The
// write already happened, so a failed lookup only leaves the name out.
func resolveDoctor(ctx context.Context, svc *clinic.Service, id int64) search.DoctorRef {
	doctors, err := svc.Doctors(ctx)
	if err != nil {
		log.Printf("resolve doctor_id=%d: %v", id, err)
		return search.DoctorRef{ID: id}
	}
	return search.IndexDoctors(doctors).Resolve(id)
}

func listResponse(rows []search.Row) AppointmentListResponse {
	out := make([]AppointmentResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, newAppointmentResponse(row.Appointment, row.Doctor))
	}
	return AppointmentListResponse{Appointments: out, Count: len(out)}
}

func idParam(w http.ResponseWriter, r *http.Request, code string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, code, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
