package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/middleware"
	"github.com/stemsi/course-registry/internal/response"
	"github.com/stemsi/course-registry/internal/service"
	"github.com/stemsi/course-registry/internal/service/servicetest"
	"github.com/stemsi/course-registry/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// envelope mirrors response.Response with a raw data field.
type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	store  *servicetest.Store
}

func newTestAPI(t *testing.T) *testAPI {
	store := servicetest.NewStore()
	paging := service.Paging{DefaultLimit: 10, MaxLimit: 100}

	students := NewStudentHandler(service.NewStudentService(store.Students(), paging))
	courses := NewCourseHandler(service.NewCourseService(store.Courses(), paging))
	enrollments := NewEnrollmentHandler(service.NewEnrollmentService(
		store.Enrollments(), store.Students(), store.Courses(), paging))

	r := gin.New()
	r.Use(middleware.ErrorHandler(zerolog.Nop(), false))
	r.GET("/students", students.ListStudents)
	r.GET("/students/:id", students.GetStudent)
	r.POST("/students", students.CreateStudent)
	r.PATCH("/students/:id", students.UpdateStudent)
	r.DELETE("/students/:id", students.DeleteStudent)
	r.GET("/courses", courses.ListCourses)
	r.GET("/courses/:id", courses.GetCourse)
	r.POST("/courses", courses.CreateCourse)
	r.PATCH("/courses/:id", courses.UpdateCourse)
	r.DELETE("/courses/:id", courses.DeleteCourse)
	r.GET("/enrollments", enrollments.ListEnrollments)
	r.GET("/enrollments/student/:studentId", enrollments.ListByStudent)
	r.GET("/enrollments/course/:courseId", enrollments.ListByCourse)
	r.GET("/enrollments/:id", enrollments.GetEnrollment)
	r.POST("/enrollments", enrollments.CreateEnrollment)
	r.PATCH("/enrollments/:id", enrollments.UpdateEnrollment)
	r.DELETE("/enrollments/:id", enrollments.DeleteEnrollment)

	return &testAPI{t: t, engine: r, store: store}
}

func (a *testAPI) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testAPI) createID(path, body string) int {
	a.t.Helper()
	w, env := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func (a *testAPI) seed() (studentID, courseID int) {
	studentID = a.createID("/students", `{"name":"Ana Paula","email":"ana@example.com","phone":"11988887777"}`)
	courseID = a.createID("/courses", `{"name":"TypeScript Fundamentals","instructor":"Carlos Silva","duration":40}`)
	return studentID, courseID
}

func TestCreateStudent(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodPost, "/students", `{"name":"Ana Paula","email":"ana@example.com","phone":"11988887777"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var student map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &student))
	assert.EqualValues(t, 1, student["id"])
	assert.Equal(t, "Ana Paula", student["name"])
	assert.NotEmpty(t, student["createdAt"])
}

func TestCreateStudent_Validation(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodPost, "/students", `{"name":"A","email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Len(t, env.Error.Fields, 3)
}

func TestCreateStudent_DuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	w, env := api.do(http.MethodPost, "/students", `{"name":"Other","email":"ana@example.com","phone":"11977776666"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.ErrConflict, env.Error.Code)
	assert.Equal(t, "email", env.Error.Fields[0].Field)
}

func TestGetStudent(t *testing.T) {
	api := newTestAPI(t)
	studentID, courseID := api.seed()
	api.createID("/enrollments", `{"studentId":`+strconv.Itoa(studentID)+`,"courseId":`+strconv.Itoa(courseID)+`}`)

	w, env := api.do(http.MethodGet, "/students/"+strconv.Itoa(studentID), "")

	require.Equal(t, http.StatusOK, w.Code)
	var student struct {
		Enrollments []struct {
			Course struct {
				Name string `json:"name"`
			} `json:"course"`
		} `json:"enrollments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &student))
	require.Len(t, student.Enrollments, 1)
	assert.Equal(t, "TypeScript Fundamentals", student.Enrollments[0].Course.Name)
}

func TestInvalidPathID(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/students/abc", "/courses/0", "/enrollments/-1", "/enrollments/student/x"} {
		w, env := api.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, response.ErrInvalidID, env.Error.Code, path)
	}
}

func TestNotFound(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		method, path, body, message string
	}{
		{http.MethodGet, "/students/9", "", "student not found"},
		{http.MethodPatch, "/courses/9", `{"name":"Renamed"}`, "course not found"},
		{http.MethodDelete, "/enrollments/9", "", "enrollment not found"},
		{http.MethodGet, "/enrollments/course/9", "", "course not found"},
	}
	for _, tt := range tests {
		w, env := api.do(tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusNotFound, w.Code, tt.path)
		assert.Equal(t, tt.message, env.Error.Message, tt.path)
	}
}

func TestListCourses(t *testing.T) {
	api := newTestAPI(t)
	for _, body := range []string{
		`{"name":"Advanced TypeScript","instructor":"Carlos Silva","duration":60}`,
		`{"name":"TypeScript Basics","instructor":"Carlos Silva","duration":20}`,
		`{"name":"Go in Practice","instructor":"Marina Lima","duration":30}`,
	} {
		api.createID("/courses", body)
	}

	w, env := api.do(http.MethodGet, "/courses?name=typescript&sortBy=duration&order=asc&page=1&limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	var courses []struct {
		Duration int `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	require.Len(t, courses, 2)
	assert.Equal(t, 20, courses[0].Duration)
	assert.Equal(t, 60, courses[1].Duration)
	assert.Equal(t, &response.Pagination{Page: 1, Limit: 5, Total: 2, TotalPages: 1}, env.Pagination)
}

func TestListStudents_CoercesPaging(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	w, env := api.do(http.MethodGet, "/students?page=0&limit=1000&sortBy=password&order=up", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 100, env.Pagination.Limit)
}

func TestListEnrollments_RejectsUnknownStatus(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodGet, "/enrollments?status=paused", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidQuery, env.Error.Code)
}

func TestEnrollmentLifecycle(t *testing.T) {
	api := newTestAPI(t)
	studentID, courseID := api.seed()
	body := `{"studentId":` + strconv.Itoa(studentID) + `,"courseId":` + strconv.Itoa(courseID) + `}`

	enrollmentID := api.createID("/enrollments", body)

	w, env := api.do(http.MethodPost, "/enrollments", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "student is already enrolled in this course", env.Error.Message)

	w, env = api.do(http.MethodPost, "/enrollments", `{"studentId":999,"courseId":`+strconv.Itoa(courseID)+`}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "student not found", env.Error.Message)

	w, env = api.do(http.MethodPatch, "/enrollments/"+strconv.Itoa(enrollmentID), `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var enrollment struct {
		Status    string `json:"status"`
		StudentID int    `json:"studentId"`
		CourseID  int    `json:"courseId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &enrollment))
	assert.Equal(t, "completed", enrollment.Status)
	assert.Equal(t, studentID, enrollment.StudentID)
	assert.Equal(t, courseID, enrollment.CourseID)

	w, env = api.do(http.MethodGet, "/enrollments/student/"+strconv.Itoa(studentID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Pagination)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = api.do(http.MethodDelete, "/courses/"+strconv.Itoa(courseID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodGet, "/enrollments/"+strconv.Itoa(enrollmentID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStudent_Partial(t *testing.T) {
	api := newTestAPI(t)
	studentID, _ := api.seed()

	w, env := api.do(http.MethodPatch, "/students/"+strconv.Itoa(studentID), `{"phone":"(11) 97777-6666"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var student map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &student))
	assert.Equal(t, "(11) 97777-6666", student["phone"])
	assert.Equal(t, "Ana Paula", student["name"])
	assert.Equal(t, "ana@example.com", student["email"])
}

func TestUpdateCourse_Description(t *testing.T) {
	api := newTestAPI(t)
	courseID := api.createID("/courses", `{"name":"Go in Practice","description":"Concurrency and tooling","instructor":"Marina Lima","duration":30}`)
	path := "/courses/" + strconv.Itoa(courseID)

	description := func(env envelope) any {
		var course map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &course))
		return course["description"]
	}

	w, env := api.do(http.MethodPatch, path, `{"duration":35}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Concurrency and tooling", description(env))

	w, env = api.do(http.MethodPatch, path, `{"description":"`+strings.Repeat("x", 501)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "description", env.Error.Fields[0].Field)

	w, env = api.do(http.MethodPatch, path, `{"description":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, description(env))

	w, env = api.do(http.MethodPatch, path, `{"description":"Channels and generics"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Channels and generics", description(env))
}

func TestUpdateEnrollment_EmptyBody(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodPatch, "/enrollments/1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", env.Error.Fields[0].Field)
}

func TestStoreFailureIsServerError(t *testing.T) {
	api := newTestAPI(t)
	api.store.Err = errors.New("connection reset by peer")

	w, env := api.do(http.MethodGet, "/courses", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.ErrInternal, env.Error.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		database string
	}{
		{name: "database up", database: "up"},
		{name: "database down", pingErr: errors.New("dial tcp: connection refused"), database: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakePinger{err: tt.pingErr}, zerolog.Nop())
			r := gin.New()
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			var status map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &status))
			assert.Equal(t, "ok", status["status"])
			assert.Equal(t, tt.database, status["database"])
			assert.Contains(t, status, "uptime")
		})
	}
}
