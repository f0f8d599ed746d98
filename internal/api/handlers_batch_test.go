// handlers_batch_test.go - Tests for batch view handlers
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
)

func seedTracker() *batch.Tracker {
	tracker := batch.NewTracker(audit.NewLog())
	tracker.CreateBatch("alpha.csv", []models.Employee{
		{Name: "Ada Park", Email: "ada@corp.example", Status: models.EmployeeStatusCompleted},
		{Name: "Ben Ruiz", Email: "ben@corp.example", Status: models.EmployeeStatusFailed},
	}, "batch-a", models.Anonymous)
	tracker.CreateBatch("beta.csv", []models.Employee{
		{Name: "Cam Wu", Email: "cam@corp.example", Status: models.EmployeeStatusPending},
	}, "batch-b", models.Anonymous)
	return tracker
}

func TestListBatches(t *testing.T) {
	e := echo.New()
	h := NewBatchHandler(seedTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandleListBatches(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alpha.csv")
		assert.Contains(t, rec.Body.String(), "beta.csv")
	}
}

func TestGetBatch(t *testing.T) {
	e := echo.New()
	h := NewBatchHandler(seedTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch-a", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("batch-a")
	if assert.NoError(t, h.HandleGetBatch(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"totalEmployees":2`)
	}
}

func TestGetBatchNotFound(t *testing.T) {
	e := echo.New()
	h := NewBatchHandler(seedTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	err := h.HandleGetBatch(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestBatchEmployees(t *testing.T) {
	e := echo.New()
	h := NewBatchHandler(seedTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch-a/employees", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("batch-a")
	if assert.NoError(t, h.HandleBatchEmployees(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ada@corp.example")
		assert.Contains(t, rec.Body.String(), `"status":"failed"`)
	}
}

func TestBatchEmployeesMsgpack(t *testing.T) {
	e := echo.New()
	h := NewBatchHandler(seedTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch-a/employees/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("batch-a")
	require.NoError(t, h.HandleBatchEmployeesMsgpack(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

	var employees []models.Employee
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &employees))
	require.Len(t, employees, 2)
	assert.Equal(t, "ada@corp.example", employees[0].Email)
}
