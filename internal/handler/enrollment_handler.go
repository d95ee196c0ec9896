package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/response"
	"github.com/stemsi/course-registry/internal/service"
	"github.com/stemsi/course-registry/internal/validator"
)

// EnrollmentHandler handles enrollments of students in courses.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// ListEnrollments godoc
// GET /enrollments
// Lists enrollments filtered by status, studentId and courseId.
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	var q model.EnrollmentListQuery
	if err := validator.BindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}

	enrollments, pagination, err := h.enrollmentService.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithPagination(c, enrollments, pagination)
}

// ListByStudent godoc
// GET /enrollments/student/:studentId
// Returns every enrollment of the student, newest first. Not paginated.
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, enrollments)
}

// ListByCourse godoc
// GET /enrollments/course/:courseId
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	courseID, err := parseID(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	enrollments, err := h.enrollmentService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, enrollments)
}

// GetEnrollment godoc
// GET /enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	enrollment, err := h.enrollmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, enrollment)
}

// CreateEnrollment godoc
// POST /enrollments
// Enrolls a student in a course. 404 if either is missing, 409 if the
// student is already enrolled.
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req model.CreateEnrollmentRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	enrollment, err := h.enrollmentService.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, enrollment)
}

// UpdateEnrollment godoc
// PATCH /enrollments/:id
// Only the status can change.
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateEnrollmentRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	enrollment, err := h.enrollmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, enrollment)
}

// DeleteEnrollment godoc
// DELETE /enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.enrollmentService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}
