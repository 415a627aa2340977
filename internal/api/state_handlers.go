package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/preferences"
	"github.com/hackgods/clinic-local-store/internal/session"
)

// Session and preference stores are not tied to a clinic action, so their
// errors carry the generic notice.
const opState clinic.Op = "state"

func getSessionHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context())
		if err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func putSessionHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st session.State
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		if err := store.Save(r.Context(), st); err != nil {
			handleError(w, opState, err)
			return
		}
		saved, err := store.Get(r.Context())
		if err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func addSearchTermHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchTermRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		history, err := svc.SubmitSearch(r.Context(), req.Term)
		if err != nil {
			handleError(w, clinic.OpSubmitSearch, err)
			return
		}
		writeJSON(w, http.StatusOK, SearchHistoryResponse{SearchHistory: history})
	}
}

func clearSearchHistoryHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearSearchHistory(r.Context()); err != nil {
			handleError(w, clinic.OpClearSearchHistory, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setLastPageHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LastPageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		st, err := store.SetLastVisitedPage(r.Context(), req.Page)
		if err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func getPreferencesHandler(store *preferences.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.Get(r.Context())
		if err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func putPreferencesHandler(store *preferences.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p preferences.Preferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		if err := store.Save(r.Context(), p); err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func setPreferenceHandler(store *preferences.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		p, err := store.SetField(r.Context(), chi.URLParam(r, "key"), req.Value)
		if err != nil {
			handleError(w, opState, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
