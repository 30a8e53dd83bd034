package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mangashelf/internal/database"
)

type fixedCounter struct {
	n   int64
	err error
}

func (f fixedCounter) CountActive(context.Context) (int64, error) { return f.n, f.err }

func getHealth(t *testing.T, controller *HealthController) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupTestDB(t)
		controller := NewHealthController(db, database.NewLoanStore(db.DB), "1.0.0")

		w, response := getHealth(t, controller)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "0", response.Checks["active_loans"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("reports not configured when database is nil", func(t *testing.T) {
		w, response := getHealth(t, NewHealthController(nil, nil, "1.0.0"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "not configured", response.Checks["database"])
		assert.NotContains(t, response.Checks, "active_loans")
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		w, response := getHealth(t, NewHealthController(db, fixedCounter{n: 3}, "1.0.0"))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
		assert.NotContains(t, response.Checks, "active_loans")
	})

	t.Run("loan count failure does not fail the check", func(t *testing.T) {
		db := setupTestDB(t)

		w, response := getHealth(t, NewHealthController(db, fixedCounter{err: errors.New("boom")}, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "error: boom", response.Checks["active_loans"])
	})

	t.Run("counts active loans", func(t *testing.T) {
		_, response := getHealth(t, NewHealthController(nil, fixedCounter{n: 7}, ""))

		assert.Equal(t, "7", response.Checks["active_loans"])
	})
}

func TestHealthResponse_OmitsEmptyVersion(t *testing.T) {
	response := HealthResponse{
		Status: "healthy",
		Time:   "2024-01-01T12:00:00Z",
		Checks: map[string]string{},
	}

	jsonBytes, err := json.Marshal(response)
	require.NoError(t, err)

	assert.NotContains(t, string(jsonBytes), "version")
}
