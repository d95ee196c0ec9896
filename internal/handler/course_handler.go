package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/response"
	"github.com/stemsi/course-registry/internal/service"
	"github.com/stemsi/course-registry/internal/validator"
)

// CourseHandler handles course CRUD.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /courses
// Lists courses with name/instructor/duration filters, sorting and pagination.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var q model.CourseListQuery
	if err := validator.BindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}

	courses, pagination, err := h.courseService.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithPagination(c, courses, pagination)
}

// GetCourse godoc
// GET /courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// CreateCourse godoc
// POST /courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, course)
}

// UpdateCourse godoc
// PATCH /courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateCourseRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// DeleteCourse godoc
// DELETE /courses/:id
// Deletes a course; its enrollments are removed by the database.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}
