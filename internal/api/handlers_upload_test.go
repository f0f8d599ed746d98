// handlers_upload_test.go - Tests for upload session handlers
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/orchestrator"
	"github.com/onboard-hub/backend/internal/testutil"
	"github.com/onboard-hub/backend/internal/upload"
)

type testIdentity struct{}

func (testIdentity) PrincipalOrAnonymous(context.Context) models.Principal {
	return models.Anonymous
}

type uploadFixture struct {
	e         *echo.Echo
	handler   UploadHandler
	uploads   *upload.Manager
	extractor *testutil.MockExtractor
	executor  *testutil.MockExecutor
	tracker   *batch.Tracker
}

func newUploadFixture() *uploadFixture {
	f := &uploadFixture{
		e:         echo.New(),
		uploads:   upload.NewManager([]string{".csv", ".xlsx", ".xls"}, 10<<20),
		extractor: &testutil.MockExtractor{},
		executor:  testutil.NewMockExecutor(),
	}
	f.e.HTTPErrorHandler = ErrorHandler
	auditor := audit.NewLog()
	f.tracker = batch.NewTracker(auditor)
	orch := orchestrator.New(f.uploads, testutil.NewMockIngestor(), f.extractor,
		f.executor, f.tracker, &testutil.MockDepartments{Names: []string{"Engineering"}}, nil, auditor)
	f.handler = NewUploadHandler(orch, f.uploads, testIdentity{})
	return f
}

func (f *uploadFixture) postFile(t *testing.T, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if err := f.handler.HandleUploadFile(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func (f *uploadFixture) waitValidated(t *testing.T, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess, ok := f.uploads.Get(sessionID); ok && sess.Status == models.SessionStatusValidated {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("session never reached validated")
}

func (f *uploadFixture) confirm(t *testing.T, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/"+sessionID+"/confirm", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sessionID)
	if err := f.handler.HandleConfirm(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUploadFlow(t *testing.T) {
	f := newUploadFixture()
	f.extractor.Records = []models.Employee{
		{Name: "Ada Park", Email: "ada@corp.example", Department: "Engineering", Role: "Engineer", StartDate: "03/01/2026"},
	}

	// 1. Upload kicks off the chain
	rec := f.postFile(t, "hires.csv", []byte("name,email\nAda,ada@corp.example"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var sess models.UploadSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.SessionStatusProcessing, sess.Status)

	// 2. Session status shows the validation result once settled
	f.waitValidated(t, sess.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/"+sess.ID, nil)
	rec = httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, f.handler.HandleGetSession(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"validated"`)
		assert.Contains(t, rec.Body.String(), "ada@corp.example")
	}

	// 3. Confirm creates and tracks the batch
	rec = f.confirm(t, sess.ID)
	require.Equal(t, http.StatusCreated, rec.Code)

	var b models.Batch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, 1, b.TotalEmployees)
	_, err := f.tracker.Get(b.ID)
	assert.NoError(t, err)

	// 4. A second confirm of the same result is rejected
	rec = f.confirm(t, sess.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_VALIDATED")
	assert.Len(t, f.executor.Submissions, 1)
}

func TestUploadUnsupportedFile(t *testing.T) {
	f := newUploadFixture()

	rec := f.postFile(t, "resume.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_FILE")
	assert.Contains(t, rec.Body.String(), "resume.pdf")
}

func TestUploadMissingFile(t *testing.T) {
	f := newUploadFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if err := f.handler.HandleUploadFile(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmEmptySubmission(t *testing.T) {
	f := newUploadFixture()
	// The only record fails validation, so there is nothing to submit.
	f.extractor.Records = []models.Employee{
		{Name: "No Dept", Email: "x@corp.example", Department: "Unknown", Role: "r", StartDate: "03/01/2026"},
	}

	rec := f.postFile(t, "hires.csv", []byte("csv"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var sess models.UploadSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	f.waitValidated(t, sess.ID)

	rec = f.confirm(t, sess.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_SUBMISSION")
	assert.Len(t, f.executor.Submissions, 0)
}

func TestGetSessionNotFound(t *testing.T) {
	f := newUploadFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/nope", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("nope")
	err := f.handler.HandleGetSession(c)
	if assert.Error(t, err) {
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "NOT_FOUND", apiErr.Code)
	}
}

func TestResetAndDeleteSession(t *testing.T) {
	f := newUploadFixture()
	f.extractor.Records = []models.Employee{
		{Name: "Ada Park", Email: "ada@corp.example", Department: "Engineering", Role: "Engineer", StartDate: "03/01/2026"},
	}

	rec := f.postFile(t, "hires.csv", []byte("csv"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var sess models.UploadSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	f.waitValidated(t, sess.ID)

	// Reset returns the session to idle
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/"+sess.ID+"/reset", nil)
	rec = httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, f.handler.HandleResetSession(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"idle"`)
	}

	// Delete tears it down
	req = httptest.NewRequest(http.MethodDelete, "/api/uploads/"+sess.ID, nil)
	rec = httptest.NewRecorder()
	c = f.e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sess.ID)
	if assert.NoError(t, f.handler.HandleDeleteSession(c)) {
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	_, ok := f.uploads.Get(sess.ID)
	assert.False(t, ok)
}
