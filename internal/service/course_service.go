package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/apperror"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/repository"
	"github.com/stemsi/course-registry/internal/response"
)

// CourseRepository is the persistence the course service depends on.
type CourseRepository interface {
	ListPaginated(ctx context.Context, filter model.CourseFilter, params model.ListParams) ([]model.Course, int64, error)
	GetByID(ctx context.Context, id int) (*model.Course, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, id int, changes map[string]interface{}) error
	Delete(ctx context.Context, id int) error
}

// CourseService handles course business logic.
type CourseService struct {
	courseRepo CourseRepository
	paging     Paging
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo CourseRepository, paging Paging) *CourseService {
	return &CourseService{courseRepo: courseRepo, paging: paging}
}

// List retrieves one page of courses.
func (s *CourseService) List(ctx context.Context, q model.CourseListQuery) ([]model.Course, *response.Pagination, error) {
	params := s.paging.normalize(q.ListQuery, model.CourseSortFields)

	courses, total, err := s.courseRepo.ListPaginated(ctx, q.Filter(), params)
	if err != nil {
		return nil, nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, response.NewPagination(params.Page, params.Limit, total), nil
}

// GetByID retrieves a course with its enrollments.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("course")
	}
	return course, err
}

// Create inserts a new course.
func (s *CourseService) Create(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Name:        req.Name,
		Description: req.Description,
		Instructor:  req.Instructor,
		Duration:    req.Duration,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Update changes only the supplied fields and returns the stored course.
func (s *CourseService) Update(ctx context.Context, id int, req model.UpdateCourseRequest) (*model.Course, error) {
	if err := ensureExists(ctx, s.courseRepo, id, "course"); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, id, req.Changes()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a course. Its enrollments are removed by ON DELETE CASCADE.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	if err := ensureExists(ctx, s.courseRepo, id, "course"); err != nil {
		return err
	}
	return s.courseRepo.Delete(ctx, id)
}
