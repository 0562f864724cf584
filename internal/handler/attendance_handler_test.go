package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghad-alharthi/student-management-api/internal/middleware"
	"github.com/raghad-alharthi/student-management-api/internal/models"
	"github.com/raghad-alharthi/student-management-api/pkg/storage"
)

func newDownloadFixture(t *testing.T) (*AttendanceHandler, *storage.SignedURLSigner, string) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ref, err := store.Store([]byte("medical certificate"), "note.pdf")
	require.NoError(t, err)

	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewAttendanceHandler(nil, store, signer, 1024), signer, ref
}

func TestDownloadAppealFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, signer, ref := newDownloadFixture(t)

	token, _, err := signer.Generate("att-1", ref)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/files/sick-leave?token="+token, nil)
	c.Request = req

	handler.DownloadAppealFile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "medical certificate", w.Body.String())
}

func TestDownloadAppealFileBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, signer, ref := newDownloadFixture(t)

	token, _, err := signer.Generate("att-1", ref)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/files/sick-leave?token="+token+"tampered", nil)
	c.Request = req

	handler.DownloadAppealFile(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDownloadAppealFileMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newDownloadFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/files/sick-leave", nil)
	c.Request = req

	handler.DownloadAppealFile(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitSickLeaveRejectsOversizedUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newDownloadFixture(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "huge.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 2048))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/lectures/lecture-1/sick-leave", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.SubmitSickLeave(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
