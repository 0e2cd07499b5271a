package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/loadplanner/internal/config"
	"github.com/Additional-Code/loadplanner/internal/database/dbtest"
)

func TestNewEcho_Health(t *testing.T) {
	e := NewEcho(config.Config{}, nil, dbtest.NewSQLite(t), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewEcho_UnknownRouteUsesEnvelope(t *testing.T) {
	e := NewEcho(config.Config{}, nil, nil, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"kind":"not_found"`)
}

func TestNewEcho_HealthDegraded(t *testing.T) {
	conns := dbtest.NewSQLite(t)
	require.NoError(t, conns.Writer.Close())
	e := NewEcho(config.Config{}, nil, conns, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"unavailable"`)
	assert.Contains(t, rec.Body.String(), `"message":"degraded"`)
}

func TestNewEcho_MethodNotAllowed(t *testing.T) {
	e := NewEcho(config.Config{}, nil, nil, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"bad_request"`)
}
