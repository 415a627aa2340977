package clinic

import (
	"context"
	"errors"

	"github.com/hackgods/clinic-local-store/internal/records"
)

// Op names a user action for Notice.
type Op string

const (
	OpLoad               Op = "load"
	OpSubmitSearch       Op = "submit_search"
	OpClearSearchHistory Op = "clear_search_history"
	OpAddAppointment     Op = "add_appointment"
	OpUpdateAppointment  Op = "update_appointment"
	OpDeleteAppointment  Op = "delete_appointment"
	OpDoctorAppointments Op = "doctor_appointments"
)

var failureNotices = map[Op]string{
	OpLoad:               "No se pudieron cargar los datos. Intente nuevamente.",
	OpSubmitSearch:       "No se pudo guardar la búsqueda.",
	OpClearSearchHistory: "No se pudo limpiar el historial de búsqueda.",
	OpAddAppointment:     "No se pudo crear la cita. Intente nuevamente.",
	OpUpdateAppointment:  "No se pudo actualizar la cita. Intente nuevamente.",
	OpDeleteAppointment:  "No se pudo eliminar la cita. Intente nuevamente.",
	OpDoctorAppointments: "No se pudieron cargar las citas del doctor.",
}

// Notice turns a failed action into a short message for the user. It
// returns "" for a nil error and for a cancelled load, which the view just
// drops.
func Notice(op Op, err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ""
	}

	var verr *records.ValidationError
	if errors.As(err, &verr) {
		return "Los datos ingresados no son válidos: " + verr.Field + "."
	}
	if errors.Is(err, records.ErrNotFound) {
		return "La cita ya no existe."
	}

	if msg, ok := failureNotices[op]; ok {
		return msg
	}
	return "Ocurrió un error. Intente nuevamente."
}
