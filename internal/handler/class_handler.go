package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	"github.com/raghad-alharthi/student-management-api/internal/service"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
	"github.com/raghad-alharthi/student-management-api/pkg/response"
)

// ClassHandler exposes class and schedule endpoints.
type ClassHandler struct {
	schedule   *service.ScheduleService
	enrollment *service.EnrollmentService
	export     *service.ExportService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(schedule *service.ScheduleService, enrollment *service.EnrollmentService, export *service.ExportService) *ClassHandler {
	return &ClassHandler{schedule: schedule, enrollment: enrollment, export: export}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param teacherId query string false "Filter by teacher"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassFilter
	filter.TeacherID = c.Query("teacherId")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classes, total, err := h.schedule.ListClasses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Create godoc
// @Summary Create a class and generate its semester schedule
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.schedule.CreateClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Get godoc
// @Summary Fetch one class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.schedule.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete a class and everything attached to it
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.schedule.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type reassignTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"required"`
}

// ReassignTeacher godoc
// @Summary Assign the class to another teacher
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param payload body reassignTeacherRequest true "Teacher payload"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/teacher [put]
func (h *ClassHandler) ReassignTeacher(c *gin.Context) {
	var req reassignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.schedule.ReassignTeacher(c.Request.Context(), c.Param("id"), req.TeacherID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Lectures godoc
// @Summary List a class's full schedule
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/lectures [get]
func (h *ClassHandler) Lectures(c *gin.Context) {
	lectures, err := h.schedule.ListClassLectures(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, nil)
}

// Students godoc
// @Summary List students enrolled in a class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	students, err := h.enrollment.ClassStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// AbsenceReport godoc
// @Summary Download a class absence report
// @Tags Classes
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Router /classes/{id}/absence-report [get]
func (h *ClassHandler) AbsenceReport(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "pdf")))
	result, err := h.export.ClassAbsenceReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
