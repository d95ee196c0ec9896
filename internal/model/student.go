package model

import "time"

// Student represents a person who can enroll in courses.
type Student struct {
	ID          int          `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:100;not null"`
	Email       string       `json:"email" gorm:"size:255;not null;uniqueIndex:students_email_key"`
	Phone       string       `json:"phone" gorm:"size:20;not null"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// StudentSortFields maps sortable API fields to their columns.
var StudentSortFields = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

// CreateStudentRequest is the payload for creating a student.
type CreateStudentRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
	Phone string `json:"phone" binding:"required,max=20,phone"`
}

// UpdateStudentRequest is the payload for a partial student update.
// Nil fields are left untouched.
type UpdateStudentRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Phone *string `json:"phone" binding:"omitempty,max=20,phone"`
}

// Changes returns the columns to update.
func (r UpdateStudentRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Name != nil {
		changes["name"] = *r.Name
	}
	if r.Email != nil {
		changes["email"] = *r.Email
	}
	if r.Phone != nil {
		changes["phone"] = *r.Phone
	}
	return changes
}

// StudentFilter narrows a student listing. Empty fields are ignored.
type StudentFilter struct {
	Name  string
	Email string
	Phone string
}

// StudentListQuery is the query string accepted by GET /students.
type StudentListQuery struct {
	ListQuery
	Name  string `form:"name" binding:"max=100"`
	Email string `form:"email" binding:"max=255"`
	Phone string `form:"phone" binding:"max=20"`
}

// Filter extracts the filter part of the query.
func (q StudentListQuery) Filter() StudentFilter {
	return StudentFilter{Name: q.Name, Email: q.Email, Phone: q.Phone}
}
