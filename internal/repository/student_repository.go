package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/model"
	"gorm.io/gorm"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func studentFilter(f model.StudentFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			containsFold("name", f.Name),
			containsFold("email", f.Email),
			containsFold("phone", f.Phone),
		)
	}
}

// ListPaginated returns one page of students matching the filter and the
// total number of matches.
func (r *StudentRepository) ListPaginated(ctx context.Context, filter model.StudentFilter, params model.ListParams) ([]model.Student, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).Scopes(studentFilter(filter)).Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	students := []model.Student{}
	err := r.db.WithContext(ctx).
		Scopes(studentFilter(filter), sortAndPage(model.StudentSortFields, params)).
		Preload("Enrollments.Course").
		Find(&students).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return students, total, nil
}

// GetByID retrieves a student with its enrollments and their courses.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.db.WithContext(ctx).Preload("Enrollments.Course").First(s, id).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}

// Exists reports whether a student with the id is stored.
func (r *StudentRepository) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// Create inserts a new student and fills its generated fields.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(s).Error)
}

// Update applies the given column changes to a student.
func (r *StudentRepository) Update(ctx context.Context, id int, changes map[string]interface{}) error {
	return update(r.db.WithContext(ctx), &model.Student{ID: id}, changes)
}

// Delete removes a student. Its enrollments are removed by the database.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	return remove(r.db.WithContext(ctx), &model.Student{}, id)
}

// update is shared by the resource repositories: empty change sets are a
// no-op, and a change set matching no row is ErrNotFound.
func update(db *gorm.DB, target interface{}, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	res := db.Model(target).Updates(changes)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}

func remove(db *gorm.DB, entity interface{}, id int) error {
	res := db.Delete(entity, id)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}
