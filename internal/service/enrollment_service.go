package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/apperror"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/repository"
	"github.com/stemsi/course-registry/internal/response"
)

// EnrollmentRepository is the persistence the enrollment service depends on.
type EnrollmentRepository interface {
	ListPaginated(ctx context.Context, filter model.EnrollmentFilter, params model.ListParams) ([]model.Enrollment, int64, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int) ([]model.Enrollment, error)
	GetByID(ctx context.Context, id int) (*model.Enrollment, error)
	ExistsForPair(ctx context.Context, studentID, courseID int) (bool, error)
	Create(ctx context.Context, e *model.Enrollment) error
	Update(ctx context.Context, id int, changes map[string]interface{}) error
	Delete(ctx context.Context, id int) error
}

// existenceChecker is satisfied by the student and course repositories.
type existenceChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// EnrollmentService handles enrollment business logic.
type EnrollmentService struct {
	enrollmentRepo EnrollmentRepository
	studentRepo    existenceChecker
	courseRepo     existenceChecker
	paging         Paging
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollmentRepo EnrollmentRepository, studentRepo, courseRepo existenceChecker, paging Paging) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		paging:         paging,
	}
}

// List retrieves one page of enrollments.
func (s *EnrollmentService) List(ctx context.Context, q model.EnrollmentListQuery) ([]model.Enrollment, *response.Pagination, error) {
	params := s.paging.normalize(q.ListQuery, model.EnrollmentSortFields)

	enrollments, total, err := s.enrollmentRepo.ListPaginated(ctx, q.Filter(), params)
	if err != nil {
		return nil, nil, err
	}
	if enrollments == nil {
		enrollments = []model.Enrollment{}
	}
	return enrollments, response.NewPagination(params.Page, params.Limit, total), nil
}

// ListByStudent returns all enrollments of an existing student.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	if err := ensureExists(ctx, s.studentRepo, studentID, "student"); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// ListByCourse returns all enrollments in an existing course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID int) ([]model.Enrollment, error) {
	if err := ensureExists(ctx, s.courseRepo, courseID, "course"); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByCourse(ctx, courseID)
}

// GetByID retrieves an enrollment with its student and course.
func (s *EnrollmentService) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("enrollment")
	}
	return enrollment, err
}

// Create enrolls a student in a course. The pair check here gives a clear
// message; a concurrent duplicate still fails on the unique index.
func (s *EnrollmentService) Create(ctx context.Context, req model.CreateEnrollmentRequest) (*model.Enrollment, error) {
	if err := ensureExists(ctx, s.studentRepo, req.StudentID, "student"); err != nil {
		return nil, err
	}
	if err := ensureExists(ctx, s.courseRepo, req.CourseID, "course"); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.ExistsForPair(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperror.Conflict("student is already enrolled in this course")
	}

	status := req.Status
	if status == "" {
		status = model.EnrollmentActive
	}

	enrollment := &model.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID, Status: status}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, enrollment.ID)
}

// Update changes the status of an enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id int, req model.UpdateEnrollmentRequest) (*model.Enrollment, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.Update(ctx, id, req.Changes()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.enrollmentRepo.Delete(ctx, id)
}

func ensureExists(ctx context.Context, repo existenceChecker, id int, resource string) error {
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound(resource)
	}
	return nil
}
