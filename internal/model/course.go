package model

import "time"

// Course is a unit of teaching students can enroll in.
type Course struct {
	ID          int          `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:100;not null;uniqueIndex:courses_name_key"`
	Description *string      `json:"description"`
	Instructor  string       `json:"instructor" gorm:"size:100;not null"`
	Duration    int          `json:"duration" gorm:"not null;check:duration > 0"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// CourseSortFields maps sortable API fields to their columns.
var CourseSortFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"instructor": "instructor",
	"duration":   "duration",
	"createdAt":  "created_at",
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Instructor  string  `json:"instructor" binding:"required,min=3,max=100"`
	Duration    int     `json:"duration" binding:"required,gt=0,lte=10000"`
}

// UpdateCourseRequest is the payload for a partial course update.
type UpdateCourseRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Description NullString `json:"description" binding:"omitempty,max=500"`
	Instructor  *string    `json:"instructor" binding:"omitempty,min=3,max=100"`
	Duration    *int       `json:"duration" binding:"omitempty,gt=0,lte=10000"`
}

// Changes returns the columns to update. An explicit null description
// clears it.
func (r UpdateCourseRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Name != nil {
		changes["name"] = *r.Name
	}
	if r.Description.Set {
		changes["description"] = r.Description.Change()
	}
	if r.Instructor != nil {
		changes["instructor"] = *r.Instructor
	}
	if r.Duration != nil {
		changes["duration"] = *r.Duration
	}
	return changes
}

// CourseFilter narrows a course listing. Nil or empty fields are ignored.
type CourseFilter struct {
	Name        string
	Instructor  string
	Duration    *int
	DurationMin *int
	DurationMax *int
}

// CourseListQuery is the query string accepted by GET /courses.
type CourseListQuery struct {
	ListQuery
	Name        string `form:"name" binding:"max=100"`
	Instructor  string `form:"instructor" binding:"max=100"`
	Duration    *int   `form:"duration" binding:"omitempty,gt=0"`
	DurationMin *int   `form:"durationMin" binding:"omitempty,gt=0"`
	DurationMax *int   `form:"durationMax" binding:"omitempty,gt=0"`
}

// Filter extracts the filter part of the query.
func (q CourseListQuery) Filter() CourseFilter {
	return CourseFilter{
		Name:        q.Name,
		Instructor:  q.Instructor,
		Duration:    q.Duration,
		DurationMin: q.DurationMin,
		DurationMax: q.DurationMax,
	}
}
