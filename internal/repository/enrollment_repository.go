package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepository handles enrollment data access. Every read returns
// the enrollment with its student and course.
type EnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func enrollmentFilter(f model.EnrollmentFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			equals("status", string(f.Status)),
			equals("student_id", f.StudentID),
			equals("course_id", f.CourseID),
		)
	}
}

func (r *EnrollmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Student").Preload("Course")
}

// ListPaginated returns one page of enrollments matching the filter and the
// total number of matches.
func (r *EnrollmentRepository) ListPaginated(ctx context.Context, filter model.EnrollmentFilter, params model.ListParams) ([]model.Enrollment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Enrollment{}).Scopes(enrollmentFilter(filter)).Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	enrollments := []model.Enrollment{}
	err := r.withRelations(ctx).
		Scopes(enrollmentFilter(filter), sortAndPage(model.EnrollmentSortFields, params)).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return enrollments, total, nil
}

// ListByStudent returns every enrollment of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	return r.listWhere(ctx, "student_id", studentID)
}

// ListByCourse returns every enrollment in a course, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int) ([]model.Enrollment, error) {
	return r.listWhere(ctx, "course_id", courseID)
}

func (r *EnrollmentRepository) listWhere(ctx context.Context, column string, id int) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	err := r.withRelations(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: id}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "enrolled_at"}, Desc: true}).
		Find(&enrollments).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return enrollments, nil
}

// GetByID retrieves an enrollment by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	if err := r.withRelations(ctx).First(e, id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return e, nil
}

// ExistsForPair reports whether the student is already enrolled in the course.
func (r *EnrollmentRepository) ExistsForPair(ctx context.Context, studentID, courseID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// Create inserts a new enrollment. A concurrent duplicate is rejected by the
// unique (student_id, course_id) index.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return errors.WithStack(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

// Update applies the given column changes to an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, id int, changes map[string]interface{}) error {
	return update(r.db.WithContext(ctx), &model.Enrollment{ID: id}, changes)
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int) error {
	return remove(r.db.WithContext(ctx), &model.Enrollment{}, id)
}
