package model

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment links a student to a course. The (student_id, course_id) pair
// is unique in the database.
type Enrollment struct {
	ID         int              `json:"id" gorm:"primaryKey"`
	StudentID  int              `json:"studentId" gorm:"not null;uniqueIndex:enrollments_student_id_course_id_key"`
	CourseID   int              `json:"courseId" gorm:"not null;uniqueIndex:enrollments_student_id_course_id_key"`
	Status     EnrollmentStatus `json:"status" gorm:"size:20;not null;default:active"`
	EnrolledAt time.Time        `json:"enrolledAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Student    *Student         `json:"student,omitempty"`
	Course     *Course          `json:"course,omitempty"`
}

// EnrollmentSortFields maps sortable API fields to their columns.
var EnrollmentSortFields = map[string]string{
	"id":         "id",
	"status":     "status",
	"enrolledAt": "enrolled_at",
	"createdAt":  "created_at",
}

// CreateEnrollmentRequest is the payload for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID int              `json:"studentId" binding:"required,gt=0"`
	CourseID  int              `json:"courseId" binding:"required,gt=0"`
	Status    EnrollmentStatus `json:"status" binding:"omitempty,oneof=active completed cancelled"`
}

// UpdateEnrollmentRequest only carries the status: the student and course of
// an enrollment never change after creation.
type UpdateEnrollmentRequest struct {
	Status *EnrollmentStatus `json:"status" binding:"omitempty,oneof=active completed cancelled"`
}

// Changes returns the columns to update.
func (r UpdateEnrollmentRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Status != nil {
		changes["status"] = string(*r.Status)
	}
	return changes
}

// EnrollmentFilter narrows an enrollment listing. Zero fields are ignored.
type EnrollmentFilter struct {
	Status    EnrollmentStatus
	StudentID int
	CourseID  int
}

// EnrollmentListQuery is the query string accepted by GET /enrollments.
type EnrollmentListQuery struct {
	ListQuery
	Status    EnrollmentStatus `form:"status" binding:"omitempty,oneof=active completed cancelled"`
	StudentID int              `form:"studentId" binding:"omitempty,gt=0"`
	CourseID  int              `form:"courseId" binding:"omitempty,gt=0"`
}

// Filter extracts the filter part of the query.
func (q EnrollmentListQuery) Filter() EnrollmentFilter {
	return EnrollmentFilter{Status: q.Status, StudentID: q.StudentID, CourseID: q.CourseID}
}
