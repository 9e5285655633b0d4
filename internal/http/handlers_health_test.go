package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandlerHEAD(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHealthHandlerFailingCheck(t *testing.T) {
	checks := map[string]HealthCheck{
		"redis":   func(context.Context) error { return nil },
		"records": func(context.Context) error { return errors.New("connection refused") },
	}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(checks)(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t,
		`{"status":"degraded","checks":{"redis":"ok","records":"connection refused"}}`,
		rec.Body.String())
}
