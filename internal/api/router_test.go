package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hackgods/clinic-local-store/internal/clinic"
	"github.com/hackgods/clinic-local-store/internal/db"
	"github.com/hackgods/clinic-local-store/internal/kv"
	"github.com/hackgods/clinic-local-store/internal/preferences"
	"github.com/hackgods/clinic-local-store/internal/records"
	"github.com/hackgods/clinic-local-store/internal/seed"
	"github.com/hackgods/clinic-local-store/internal/session"
)

func newTestRouter(t *testing.T, deps ...Dependency) http.Handler {
	t.Helper()
	h, _ := newTestRouterWithRepo(t, deps...)
	return h
}

func newTestRouterWithRepo(t *testing.T, deps ...Dependency) (http.Handler, records.Repository) {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	repo, err := records.NewSQLRepository(ctx, conn, db.SQLite)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := seed.ResetToReferenceData(ctx, repo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	prefsBackend, err := kv.NewSQLStore(ctx, conn, db.SQLite)
	if err != nil {
		t.Fatalf("kv store: %v", err)
	}

	sess := session.New(kv.NewMemory())
	return NewRouter(RouterConfig{
		Clinic:       clinic.NewService(repo, sess),
		Session:      sess,
		Preferences:  preferences.New(prefsBackend),
		Dependencies: deps,
		Env:          "test",
		Version:      "dev",
	}), repo
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestListAppointmentsFiltered(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/appointments?q=VACUN", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decode[AppointmentListResponse](t, rec)
	if resp.Count != 1 || resp.Appointments[0].PatientName != "Juanin" || resp.Appointments[0].DoctorName != "Dra. Ana Polo" {
		t.Errorf("resp = %+v", resp)
	}

	all := decode[AppointmentListResponse](t, do(t, h, http.MethodGet, "/appointments", nil))
	if all.Count != 3 {
		t.Errorf("unfiltered count = %d", all.Count)
	}
}

func TestDoctorAppointments(t *testing.T) {
	h := newTestRouter(t)

	resp := decode[AppointmentListResponse](t, do(t, h, http.MethodGet, "/doctors/1/appointments", nil))
	if resp.Count != 1 || resp.Appointments[0].PatientName != "Bodoque" {
		t.Errorf("resp = %+v", resp)
	}

	rec := do(t, h, http.MethodGet, "/doctors/999/appointments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown doctor status = %d", rec.Code)
	}
	if resp := decode[AppointmentListResponse](t, rec); resp.Count != 0 {
		t.Errorf("unknown doctor appointments = %+v", resp)
	}
	if rec := do(t, h, http.MethodGet, "/doctors/abc/appointments", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}
}

func TestDeletedDoctorKeepsAppointments(t *testing.T) {
	h, repo := newTestRouterWithRepo(t)

	if err := repo.DeleteDoctor(context.Background(), 1); err != nil {
		t.Fatalf("DeleteDoctor: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/doctors/1/appointments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decode[AppointmentListResponse](t, rec)
	if resp.Count != 1 || resp.Appointments[0].PatientName != "Bodoque" || resp.Appointments[0].DoctorName != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWriteResponsesCarryDoctorName(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/appointments", map[string]any{
		"patientName": "Tulio",
		"doctorId":    2,
		"date":        "2025-03-13T16:00:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[AppointmentResponse](t, rec)
	if created.DoctorName != "Dr. Nick Riviera" {
		t.Errorf("create doctorName = %q", created.DoctorName)
	}

	rec = do(t, h, http.MethodPatch, "/appointments/"+itoa(created.ID), map[string]any{"doctorId": 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[AppointmentResponse](t, rec); got.DoctorName != "Dr. Simi" {
		t.Errorf("patch doctorName = %q", got.DoctorName)
	}

	list := decode[AppointmentListResponse](t, do(t, h, http.MethodGet, "/appointments?q=tulio", nil))
	if list.Count != 1 || list.Appointments[0].DoctorName != "Dr. Simi" {
		t.Errorf("list = %+v", list)
	}
}

func TestZonelessDateRoundTrips(t *testing.T) {
	saved := time.Local
	time.Local = time.FixedZone("CLT", -3*3600)
	t.Cleanup(func() { time.Local = saved })

	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/appointments", map[string]any{
		"patientName": "Tulio",
		"doctorId":    1,
		"date":        "2025-03-13T16:00:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}

	var raw struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.Date != "2025-03-13T16:00:00-03:00" {
		t.Errorf("create date = %q", raw.Date)
	}

	list := decode[AppointmentListResponse](t, do(t, h, http.MethodGet, "/appointments?q=tulio", nil))
	if list.Count != 1 {
		t.Fatalf("list = %+v", list)
	}
	if got := list.Appointments[0].Date.Format("2006-01-02T15:04:05"); got != "2025-03-13T16:00:00" {
		t.Errorf("list wall clock = %q", got)
	}
}

func TestAppointmentCRUD(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/appointments", map[string]any{
		"patientName": "Tulio",
		"doctorId":    4,
		"date":        "2025-03-13T16:00:00",
		"reason":      "Control",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[AppointmentResponse](t, rec)
	if created.ID == 0 || created.Status != "pendiente" {
		t.Errorf("created = %+v", created)
	}

	path := "/appointments/" + itoa(created.ID)
	rec = do(t, h, http.MethodPatch, path, map[string]any{"status": "confirmada"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[AppointmentResponse](t, rec); got.Status != "confirmada" || got.Reason != "Control" {
		t.Errorf("patched = %+v", got)
	}

	if rec := do(t, h, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodDelete, path, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
	if e := decode[ErrorResponse](t, rec); e.Error != "not_found" || e.Notice == "" {
		t.Errorf("error body = %+v", e)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing patient", map[string]any{"doctorId": 1, "date": "2025-03-13T16:00:00"}},
		{"unknown status", map[string]any{"patientName": "Tulio", "doctorId": 1, "date": "2025-03-13T16:00:00", "status": "perdida"}},
		{"bad date", map[string]any{"patientName": "Tulio", "doctorId": 1, "date": "mañana"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/appointments", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestSearchHistoryEndpoints(t *testing.T) {
	h := newTestRouter(t)

	do(t, h, http.MethodPost, "/session/search-history", SearchTermRequest{Term: "mario"})
	rec := do(t, h, http.MethodPost, "/session/search-history", SearchTermRequest{Term: "nick"})
	hist := decode[SearchHistoryResponse](t, rec)
	if len(hist.SearchHistory) != 2 || hist.SearchHistory[0] != "nick" {
		t.Errorf("history = %v", hist.SearchHistory)
	}

	if rec := do(t, h, http.MethodDelete, "/session/search-history", nil); rec.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rec.Code)
	}
	st := decode[session.State](t, do(t, h, http.MethodGet, "/session", nil))
	if len(st.SearchHistory) != 0 {
		t.Errorf("history after clear = %v", st.SearchHistory)
	}
}

func TestSessionLastPage(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/session/last-page", LastPageRequest{Page: "/citas"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decode[session.State](t, do(t, h, http.MethodGet, "/session", nil))
	if st.LastVisitedPage != "/citas" {
		t.Errorf("lastVisitedPage = %q", st.LastVisitedPage)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	h := newTestRouter(t)

	p := decode[preferences.Preferences](t, do(t, h, http.MethodGet, "/preferences", nil))
	if p != preferences.Defaults() {
		t.Errorf("initial = %+v", p)
	}

	rec := do(t, h, http.MethodPatch, "/preferences/theme", SetFieldRequest{Value: "dark"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rec.Code, rec.Body)
	}
	if p := decode[preferences.Preferences](t, rec); p.Theme != "dark" {
		t.Errorf("theme = %q", p.Theme)
	}

	if rec := do(t, h, http.MethodPatch, "/preferences/colour", SetFieldRequest{Value: "red"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPatch, "/preferences/notifications", SetFieldRequest{Value: "yes"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad value status = %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       []Dependency
		wantStatus string
		wantCode   int
	}{
		{"all up", []Dependency{{"sqlite", up, true}, {"redis", up, false}}, "ok", http.StatusOK},
		{"optional down", []Dependency{{"sqlite", up, true}, {"redis", down, false}}, "degraded", http.StatusOK},
		{"required down", []Dependency{{"sqlite", down, true}, {"redis", up, false}}, "error", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.deps, "test", "dev")
			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if resp := decode[ReadinessResponse](t, rec); resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}

	rec = do(t, h, http.MethodGet, "/health/live", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no request id generated")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
