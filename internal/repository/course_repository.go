package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/model"
	"gorm.io/gorm"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func courseFilter(f model.CourseFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			containsFold("name", f.Name),
			containsFold("instructor", f.Instructor),
			compare("duration", "=", f.Duration),
			compare("duration", ">=", f.DurationMin),
			compare("duration", "<=", f.DurationMax),
		)
	}
}

// ListPaginated returns one page of courses matching the filter and the
// total number of matches.
func (r *CourseRepository) ListPaginated(ctx context.Context, filter model.CourseFilter, params model.ListParams) ([]model.Course, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Course{}).Scopes(courseFilter(filter)).Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	courses := []model.Course{}
	err := r.db.WithContext(ctx).
		Scopes(courseFilter(filter), sortAndPage(model.CourseSortFields, params)).
		Preload("Enrollments.Student").
		Find(&courses).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return courses, total, nil
}

// GetByID retrieves a course with its enrollments and their students.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	if err := r.db.WithContext(ctx).Preload("Enrollments.Student").First(c, id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return c, nil
}

// Exists reports whether a course with the id is stored.
func (r *CourseRepository) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(c).Error)
}

// Update applies the given column changes to a course.
func (r *CourseRepository) Update(ctx context.Context, id int, changes map[string]interface{}) error {
	return update(r.db.WithContext(ctx), &model.Course{ID: id}, changes)
}

// Delete removes a course; ON DELETE CASCADE removes its enrollments.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	return remove(r.db.WithContext(ctx), &model.Course{}, id)
}
