package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/response"
	"github.com/stemsi/course-registry/internal/service"
	"github.com/stemsi/course-registry/internal/validator"
)

// StudentHandler handles student CRUD. Failures are pushed to the gin
// context and rendered by middleware.ErrorHandler.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// ListStudents godoc
// GET /students
// Lists students with name/email/phone filters, sorting and pagination.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var q model.StudentListQuery
	if err := validator.BindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}

	students, pagination, err := h.studentService.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithPagination(c, students, pagination)
}

// GetStudent godoc
// GET /students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, student)
}

// CreateStudent godoc
// POST /students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, student)
}

// UpdateStudent godoc
// PATCH /students/:id
// Only the supplied fields change.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateStudentRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, student)
}

// DeleteStudent godoc
// DELETE /students/:id
// Deletes a student together with its enrollments.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}
