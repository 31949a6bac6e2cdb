package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/middleware"
	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository/memory"
	appointmentService "github.com/jwalitptl/scheduler-api/internal/service/appointment"
	dentistService "github.com/jwalitptl/scheduler-api/internal/service/dentist"
	patientService "github.com/jwalitptl/scheduler-api/internal/service/patient"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
)

type testEnv struct {
	router  *gin.Engine
	dentist *model.Dentist
	patient *model.Patient
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	repo := memory.NewAppointmentRepository(0)
	dentistSvc := dentistService.NewService(memory.NewDentistRepository())
	patientSvc := patientService.NewService(memory.NewPatientRepository())

	svc := appointmentService.NewService(
		repo, dentistSvc, patientSvc,
		appointmentService.Config{},
		&logger.Logger{ZL: zerolog.Nop()},
	)

	dentist, err := dentistSvc.Create(context.Background(), &model.CreateDentistRequest{Name: "Dr. Souza"})
	require.NoError(t, err)
	patient, err := patientSvc.Create(context.Background(), &model.CreatePatientRequest{
		Name:  "Ana Lima",
		Email: "ana@example.com",
	})
	require.NoError(t, err)

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	return &testEnv{router: router, dentist: dentist, patient: patient}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Data        model.Appointment `json:"data"`
	ConflictIDs []string          `json:"conflicting_appointment_ids"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func bookBody(e *testEnv, start time.Time, minutes int) gin.H {
	return gin.H{
		"dentist_id":       e.dentist.ID,
		"patient_id":       e.patient.ID,
		"start_time":       start.Format(time.RFC3339),
		"duration_minutes": minutes,
	}
}

func TestBookAppointmentEndpoint(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, model.AppointmentStatusScheduled, resp.Data.Status)
	assert.NotEqual(t, uuid.Nil, resp.Data.ID)
}

func TestBookAppointmentRejectsPastStart(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(-time.Hour)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookAppointmentConflictResponse(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode(t, w).Data

	w = e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start.Add(15*time.Minute), 30))
	require.Equal(t, http.StatusConflict, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, []string{first.ID.String()}, resp.ConflictIDs)
}

func TestCancelAndRebookEndpoint(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	require.Equal(t, http.StatusCreated, w.Code)
	apt := decode(t, w).Data

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/cancel", apt.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Cancelling again hits the terminal-state guard.
	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/cancel", apt.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The interval is free again.
	w = e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRescheduleEndpoint(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 60))
	require.Equal(t, http.StatusCreated, w.Code)
	apt := decode(t, w).Data

	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/appointments/%s", apt.ID), gin.H{
		"start_time":       start.Add(30 * time.Minute).Format(time.RFC3339),
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, start.Add(30*time.Minute).Unix(), resp.Data.StartTime.Unix())
}

func TestUpdateStatusEndpoint(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	require.Equal(t, http.StatusCreated, w.Code)
	apt := decode(t, w).Data

	path := fmt.Sprintf("/api/v1/appointments/%s/status", apt.ID)

	// Skipping confirmation is an invalid transition.
	w = e.do(t, http.MethodPatch, path, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPatch, path, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.AppointmentStatusConfirmed, decode(t, w).Data.Status)
}

func TestGetAvailabilityEndpoint(t *testing.T) {
	e := setupTest(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)

	path := fmt.Sprintf(
		"/api/v1/appointments/availability?dentist_id=%s&start_time=%s&duration_minutes=30",
		e.dentist.ID,
		start.Format(time.RFC3339),
	)

	w := e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":true`)

	w = e.do(t, http.MethodPost, "/api/v1/appointments", bookBody(e, start, 30))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":false`)
}

func TestGetAppointmentNotFound(t *testing.T) {
	e := setupTest(t)

	w := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/appointments/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
