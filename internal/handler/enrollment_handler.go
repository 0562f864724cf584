package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raghad-alharthi/student-management-api/internal/service"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
	"github.com/raghad-alharthi/student-management-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll a student in a class
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Delete godoc
// @Summary Remove a student from a class
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param classId path string true "Class ID"
// @Success 204
// @Router /enrollments/{studentId}/{classId} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Unenroll(c.Request.Context(), c.Param("studentId"), c.Param("classId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StudentClasses godoc
// @Summary List classes a student is enrolled in
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/classes [get]
func (h *EnrollmentHandler) StudentClasses(c *gin.Context) {
	classes, err := h.enrollments.StudentClasses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
