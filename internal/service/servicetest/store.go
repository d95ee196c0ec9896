// Package servicetest provides an in-memory implementation of the service
// repositories for tests. It mimics the database where callers can observe
// it: unique keys fail with a Postgres unique violation, missing rows with
// repository.ErrNotFound, and deleting a student or course cascades.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/repository"
)

// Store holds students, courses and enrollments in memory.
type Store struct {
	mu          sync.Mutex
	nextID      int
	students    map[int]model.Student
	courses     map[int]model.Course
	enrollments map[int]model.Enrollment

	// Err, when set, is returned by every operation.
	Err error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		students:    make(map[int]model.Student),
		courses:     make(map[int]model.Course),
		enrollments: make(map[int]model.Enrollment),
	}
}

// Students returns the student repository view of the store.
func (s *Store) Students() *Students { return &Students{s} }

// Courses returns the course repository view of the store.
func (s *Store) Courses() *Courses { return &Courses{s} }

// Enrollments returns the enrollment repository view of the store.
func (s *Store) Enrollments() *Enrollments { return &Enrollments{s} }

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

func uniqueViolation(constraint, column, value string) error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraint,
		Detail:         fmt.Sprintf("Key (%s)=(%s) already exists.", column, value),
	}
}

func notFound() error {
	return errors.WithStack(repository.ErrNotFound)
}

func contains(value, part string) bool {
	return part == "" || strings.Contains(strings.ToLower(value), strings.ToLower(part))
}

// page sorts rows with less and returns the requested window.
func page[T any](rows []T, params model.ListParams, less func(a, b T) bool) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		if params.Order == model.SortAsc {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
	start := params.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// ─── Students ────────────────────────────────────────────────────────────────

// Students implements service.StudentRepository.
type Students struct{ s *Store }

func (r *Students) ListPaginated(_ context.Context, f model.StudentFilter, params model.ListParams) ([]model.Student, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var rows []model.Student
	for _, st := range r.s.students {
		if contains(st.Name, f.Name) && contains(st.Email, f.Email) && contains(st.Phone, f.Phone) {
			rows = append(rows, st)
		}
	}
	return page(rows, params, func(a, b model.Student) bool {
		switch params.SortBy {
		case "name":
			return a.Name < b.Name
		case "email":
			return a.Email < b.Email
		default:
			return a.ID < b.ID
		}
	}), int64(len(rows)), nil
}

func (r *Students) GetByID(_ context.Context, id int) (*model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	st, ok := r.s.students[id]
	if !ok {
		return nil, notFound()
	}
	st.Enrollments = []model.Enrollment{}
	for _, e := range r.s.enrollments {
		if e.StudentID == id {
			c := r.s.courses[e.CourseID]
			e.Course = &c
			st.Enrollments = append(st.Enrollments, e)
		}
	}
	return &st, nil
}

func (r *Students) Exists(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	_, ok := r.s.students[id]
	return ok, nil
}

func (r *Students) Create(_ context.Context, st *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if err := r.checkEmail(0, st.Email); err != nil {
		return err
	}
	now := time.Now().UTC()
	st.ID, st.CreatedAt, st.UpdatedAt = r.s.id(), now, now
	r.s.students[st.ID] = *st
	return nil
}

func (r *Students) Update(_ context.Context, id int, changes map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	st, ok := r.s.students[id]
	if !ok {
		return notFound()
	}
	if len(changes) == 0 {
		return nil
	}
	for column, value := range changes {
		switch column {
		case "name":
			st.Name = value.(string)
		case "email":
			if err := r.checkEmail(id, value.(string)); err != nil {
				return err
			}
			st.Email = value.(string)
		case "phone":
			st.Phone = value.(string)
		}
	}
	st.UpdatedAt = time.Now().UTC()
	r.s.students[id] = st
	return nil
}

func (r *Students) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.students[id]; !ok {
		return notFound()
	}
	delete(r.s.students, id)
	for eid, e := range r.s.enrollments {
		if e.StudentID == id {
			delete(r.s.enrollments, eid)
		}
	}
	return nil
}

func (r *Students) checkEmail(self int, email string) error {
	for id, st := range r.s.students {
		if id != self && st.Email == email {
			return uniqueViolation("students_email_key", "email", email)
		}
	}
	return nil
}

// ─── Courses ─────────────────────────────────────────────────────────────────

// Courses implements service.CourseRepository.
type Courses struct{ s *Store }

func (r *Courses) ListPaginated(_ context.Context, f model.CourseFilter, params model.ListParams) ([]model.Course, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var rows []model.Course
	for _, c := range r.s.courses {
		if !contains(c.Name, f.Name) || !contains(c.Instructor, f.Instructor) {
			continue
		}
		if f.Duration != nil && c.Duration != *f.Duration {
			continue
		}
		if f.DurationMin != nil && c.Duration < *f.DurationMin {
			continue
		}
		if f.DurationMax != nil && c.Duration > *f.DurationMax {
			continue
		}
		rows = append(rows, c)
	}
	return page(rows, params, func(a, b model.Course) bool {
		switch params.SortBy {
		case "name":
			return a.Name < b.Name
		case "instructor":
			return a.Instructor < b.Instructor
		case "duration":
			if a.Duration != b.Duration {
				return a.Duration < b.Duration
			}
		}
		return a.ID < b.ID
	}), int64(len(rows)), nil
}

func (r *Courses) GetByID(_ context.Context, id int) (*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.courses[id]
	if !ok {
		return nil, notFound()
	}
	c.Enrollments = []model.Enrollment{}
	for _, e := range r.s.enrollments {
		if e.CourseID == id {
			st := r.s.students[e.StudentID]
			e.Student = &st
			c.Enrollments = append(c.Enrollments, e)
		}
	}
	return &c, nil
}

func (r *Courses) Exists(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	_, ok := r.s.courses[id]
	return ok, nil
}

func (r *Courses) Create(_ context.Context, c *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if err := r.checkName(0, c.Name); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.ID, c.CreatedAt, c.UpdatedAt = r.s.id(), now, now
	r.s.courses[c.ID] = *c
	return nil
}

func (r *Courses) Update(_ context.Context, id int, changes map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	c, ok := r.s.courses[id]
	if !ok {
		return notFound()
	}
	if len(changes) == 0 {
		return nil
	}
	for column, value := range changes {
		switch column {
		case "name":
			if err := r.checkName(id, value.(string)); err != nil {
				return err
			}
			c.Name = value.(string)
		case "description":
			if value == nil {
				c.Description = nil
				continue
			}
			d := value.(string)
			c.Description = &d
		case "instructor":
			c.Instructor = value.(string)
		case "duration":
			c.Duration = value.(int)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	r.s.courses[id] = c
	return nil
}

func (r *Courses) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.courses[id]; !ok {
		return notFound()
	}
	delete(r.s.courses, id)
	for eid, e := range r.s.enrollments {
		if e.CourseID == id {
			delete(r.s.enrollments, eid)
		}
	}
	return nil
}

func (r *Courses) checkName(self int, name string) error {
	for id, c := range r.s.courses {
		if id != self && c.Name == name {
			return uniqueViolation("courses_name_key", "name", name)
		}
	}
	return nil
}

// ─── Enrollments ─────────────────────────────────────────────────────────────

// Enrollments implements service.EnrollmentRepository.
type Enrollments struct{ s *Store }

func (r *Enrollments) withRelations(e model.Enrollment) model.Enrollment {
	st := r.s.students[e.StudentID]
	c := r.s.courses[e.CourseID]
	e.Student, e.Course = &st, &c
	return e
}

func (r *Enrollments) ListPaginated(_ context.Context, f model.EnrollmentFilter, params model.ListParams) ([]model.Enrollment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var rows []model.Enrollment
	for _, e := range r.s.enrollments {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.StudentID != 0 && e.StudentID != f.StudentID {
			continue
		}
		if f.CourseID != 0 && e.CourseID != f.CourseID {
			continue
		}
		rows = append(rows, r.withRelations(e))
	}
	return page(rows, params, func(a, b model.Enrollment) bool {
		if params.SortBy == "status" && a.Status != b.Status {
			return a.Status < b.Status
		}
		return a.ID < b.ID
	}), int64(len(rows)), nil
}

func (r *Enrollments) ListByStudent(_ context.Context, studentID int) ([]model.Enrollment, error) {
	return r.listWhere(func(e model.Enrollment) bool { return e.StudentID == studentID })
}

func (r *Enrollments) ListByCourse(_ context.Context, courseID int) ([]model.Enrollment, error) {
	return r.listWhere(func(e model.Enrollment) bool { return e.CourseID == courseID })
}

func (r *Enrollments) listWhere(match func(model.Enrollment) bool) ([]model.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rows := []model.Enrollment{}
	for _, e := range r.s.enrollments {
		if match(e) {
			rows = append(rows, r.withRelations(e))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return rows, nil
}

func (r *Enrollments) GetByID(_ context.Context, id int) (*model.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.enrollments[id]
	if !ok {
		return nil, notFound()
	}
	e = r.withRelations(e)
	return &e, nil
}

func (r *Enrollments) ExistsForPair(_ context.Context, studentID, courseID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, e := range r.s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Enrollments) Create(_ context.Context, e *model.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.students[e.StudentID]; !ok {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "enrollments_student_id_fkey"}
	}
	if _, ok := r.s.courses[e.CourseID]; !ok {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "enrollments_course_id_fkey"}
	}
	for _, other := range r.s.enrollments {
		if other.StudentID == e.StudentID && other.CourseID == e.CourseID {
			return uniqueViolation("enrollments_student_id_course_id_key", "student_id, course_id",
				fmt.Sprintf("%d, %d", e.StudentID, e.CourseID))
		}
	}
	now := time.Now().UTC()
	e.ID, e.EnrolledAt, e.CreatedAt, e.UpdatedAt = r.s.id(), now, now, now
	r.s.enrollments[e.ID] = *e
	return nil
}

func (r *Enrollments) Update(_ context.Context, id int, changes map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	e, ok := r.s.enrollments[id]
	if !ok {
		return notFound()
	}
	if status, ok := changes["status"]; ok {
		e.Status = model.EnrollmentStatus(status.(string))
		e.UpdatedAt = time.Now().UTC()
	}
	r.s.enrollments[id] = e
	return nil
}

func (r *Enrollments) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.enrollments[id]; !ok {
		return notFound()
	}
	delete(r.s.enrollments, id)
	return nil
}
