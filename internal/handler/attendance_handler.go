package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	"github.com/raghad-alharthi/student-management-api/internal/service"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
	"github.com/raghad-alharthi/student-management-api/pkg/response"
	"github.com/raghad-alharthi/student-management-api/pkg/storage"
)

// AttendanceHandler exposes roster and sick-leave endpoints.
type AttendanceHandler struct {
	attendance  *service.AttendanceService
	files       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	maxFileSize int64
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, files *storage.LocalStorage, signer *storage.SignedURLSigner, maxFileSize int64) *AttendanceHandler {
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	return &AttendanceHandler{attendance: attendance, files: files, signer: signer, maxFileSize: maxFileSize}
}

// PastLectures godoc
// @Summary List lectures available for attendance taking
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/lectures/past [get]
func (h *AttendanceHandler) PastLectures(c *gin.Context) {
	lectures, err := h.attendance.ListPastLectures(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, nil)
}

// Roster godoc
// @Summary Fetch a lecture's attendance sheet
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id}/roster [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	roster, err := h.attendance.GetRoster(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// SaveRoster godoc
// @Summary Save a lecture's attendance sheet
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param payload body service.SaveRosterRequest true "Roster payload"
// @Success 204
// @Router /lectures/{id}/roster [put]
func (h *AttendanceHandler) SaveRoster(c *gin.Context) {
	var req service.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.LectureID = c.Param("id")
	if err := h.attendance.SaveRoster(c.Request.Context(), claimsFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitSickLeave godoc
// @Summary Attach sick-leave evidence to a recorded absence
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Param file formData file true "Evidence document"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id}/sick-leave [post]
func (h *AttendanceHandler) SubmitSickLeave(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing sick-leave file"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sick-leave file too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sick-leave file too large"))
		return
	}

	record, err := h.attendance.SubmitSickLeave(c.Request.Context(), claims.UserID, c.Param("id"), data, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Review godoc
// @Summary Accept or reject a sick-leave appeal
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Param payload body service.ReviewSickLeaveRequest true "Verdict payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/review [put]
func (h *AttendanceHandler) Review(c *gin.Context) {
	var req service.ReviewSickLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.AttendanceID = c.Param("id")
	record, err := h.attendance.ReviewSickLeave(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Appeals godoc
// @Summary List a lecture's sick-leave appeals
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id}/sick-leave [get]
func (h *AttendanceHandler) Appeals(c *gin.Context) {
	appeals, err := h.attendance.ListSickLeaveRequests(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appeals, nil)
}

// AppealFileURL godoc
// @Summary Issue a short-lived signed URL for an appeal attachment
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/file-url [get]
func (h *AttendanceHandler) AppealFileURL(c *gin.Context) {
	attendanceID := c.Param("id")
	ref, err := h.attendance.AppealFileRef(c.Request.Context(), claimsFromContext(c), attendanceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.signer.Generate(attendanceID, ref)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/files/sick-leave?token=" + token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	}, nil)
}

// DownloadAppealFile godoc
// @Summary Download an appeal attachment via a signed URL
// @Tags Attendance
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /files/sick-leave [get]
func (h *AttendanceHandler) DownloadAppealFile(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing token"))
		return
	}
	_, ref, _, err := h.signer.Parse(token)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link"))
		return
	}

	file, err := h.files.Open(ref)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attachment not found"))
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="sick-leave"`)
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, file); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// StudentAbsences godoc
// @Summary A student's absence overview across their classes
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/absences [get]
func (h *AttendanceHandler) StudentAbsences(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := c.Param("id")
	if claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "not your record"))
		return
	}
	overview, err := h.attendance.StudentOverview(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// ClassSummary godoc
// @Summary One student's absence summary for one class
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/absences [get]
func (h *AttendanceHandler) ClassSummary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := c.Param("studentId")
	if claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "not your record"))
		return
	}
	summary, err := h.attendance.AbsenceSummary(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
