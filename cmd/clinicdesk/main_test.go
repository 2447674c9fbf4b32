package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicdesk/internal/access"
	"clinicdesk/internal/clinicapi"
	"clinicdesk/internal/session"
)

func TestHealthRouter(t *testing.T) {
	var backendErr error
	h := healthRouter([]readiness{{name: "backend", ping: func(context.Context) error { return backendErr }}}, true)
	srv := httptest.NewServer(h)
	defer srv.Close()

	get := func(path string) int {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("/healthz"))
	assert.Equal(t, http.StatusOK, get("/readyz"))
	assert.Equal(t, http.StatusOK, get("/metrics"))

	backendErr = errors.New("down")
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz"))
	assert.Equal(t, http.StatusOK, get("/healthz"))
}

func TestHealthRouter_NoMetrics(t *testing.T) {
	srv := httptest.NewServer(healthRouter(nil, false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserMessage(t *testing.T) {
	apiErr := &clinicapi.APIError{StatusCode: http.StatusConflict, Message: "Slot already booked"}
	assert.Equal(t, "Slot already booked", userMessage(fmt.Errorf("book: %w", apiErr)))
	assert.Equal(t, clinicapi.GenericMessage, userMessage(&clinicapi.APIError{StatusCode: 500}))
	assert.Equal(t, "not logged in; run clinicdesk login", userMessage(session.ErrNotAuthenticated))
	assert.Equal(t, "boom", userMessage(errors.New("boom")))
}

func TestScheduleDoctor(t *testing.T) {
	assert.Equal(t, "D-9", scheduleDoctor(access.Principal{UserID: "U1", DoctorID: "D1"}, []string{"D-9"}))
	assert.Equal(t, "D1", scheduleDoctor(access.Principal{UserID: "U1", DoctorID: "D1"}, nil))
	assert.Equal(t, "U1", scheduleDoctor(access.Principal{UserID: "U1"}, nil))
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, newLogger("DEBUG", "json").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("bogus", "console").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("", "console").GetLevel())
}

func TestRootCmd_Commands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"login", "logout", "whoami", "day", "dashboard", "book", "reschedule",
		"cancel", "complete", "patients", "locations", "users", "schedule", "password", "export", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
