package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/apperror"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/repository"
	"github.com/stemsi/course-registry/internal/response"
)

// StudentRepository is the persistence the student service depends on.
type StudentRepository interface {
	ListPaginated(ctx context.Context, filter model.StudentFilter, params model.ListParams) ([]model.Student, int64, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, id int, changes map[string]interface{}) error
	Delete(ctx context.Context, id int) error
}

// StudentService handles student business logic.
type StudentService struct {
	studentRepo StudentRepository
	paging      Paging
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo StudentRepository, paging Paging) *StudentService {
	return &StudentService{studentRepo: studentRepo, paging: paging}
}

// List retrieves one page of students.
func (s *StudentService) List(ctx context.Context, q model.StudentListQuery) ([]model.Student, *response.Pagination, error) {
	params := s.paging.normalize(q.ListQuery, model.StudentSortFields)

	students, total, err := s.studentRepo.ListPaginated(ctx, q.Filter(), params)
	if err != nil {
		return nil, nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, response.NewPagination(params.Page, params.Limit, total), nil
}

// GetByID retrieves a student with its enrollments.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("student")
	}
	return student, err
}

// Create inserts a new student. A taken email is reported by the database.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Update changes only the supplied fields and returns the stored student.
func (s *StudentService) Update(ctx context.Context, id int, req model.UpdateStudentRequest) (*model.Student, error) {
	if err := ensureExists(ctx, s.studentRepo, id, "student"); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Update(ctx, id, req.Changes()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a student and, through the database, its enrollments.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := ensureExists(ctx, s.studentRepo, id, "student"); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}
