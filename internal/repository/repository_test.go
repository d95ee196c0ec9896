package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func TestLikeEscaper(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ana", want: "ana"},
		{in: "50%", want: `50\%`},
		{in: "a_b", want: `a\_b`},
		{in: `c:\dir`, want: `c:\\dir`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likeEscaper.Replace(tt.in))
	}
}

func TestStudentRepository_ListPaginated(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStudentRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "students" WHERE name ILIKE`).
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT \* FROM "students" WHERE name ILIKE .+ ORDER BY "name","id" LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}).
			AddRow(1, "Ana", "ana@example.com", "11988887777", now, now))
	mock.ExpectQuery(`SELECT \* FROM "enrollments" WHERE "enrollments"."student_id" =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "status"}))

	students, total, err := repo.ListPaginated(context.Background(),
		model.StudentFilter{Name: "ana"},
		model.ListParams{Page: 1, Limit: 10, SortBy: "name", Order: model.SortAsc})

	require.NoError(t, err)
	assert.EqualValues(t, 11, total)
	require.Len(t, students, 1)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Empty(t, students[0].Enrollments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_ListPaginated_UnknownSortFallsBack(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "students"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "students" ORDER BY "created_at" DESC,"id" DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	students, total, err := repo.ListPaginated(context.Background(),
		model.StudentFilter{},
		model.ListParams{Page: 1, Limit: 10, SortBy: "password", Order: model.SortDesc})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, students)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "students" WHERE "students"."id" =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStudentRepository_Update(t *testing.T) {
	t.Run("empty change set is a no-op", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewStudentRepository(db)

		require.NoError(t, repo.Update(context.Background(), 1, map[string]interface{}{}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewStudentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "students" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), 7, map[string]interface{}{"name": "Bia"})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("duplicate email surfaces the driver error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewStudentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "students" SET`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "students_email_key"})
		mock.ExpectRollback()

		err := repo.Update(context.Background(), 7, map[string]interface{}{"email": "taken@example.com"})
		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, pgerrcode.UniqueViolation, pgErr.Code)
	})
}

func TestStudentRepository_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "students" WHERE "students"."id" =`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_ListPaginated_DurationRange(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCourseRepository(db)
	minDuration, maxDuration := 10, 40

	mock.ExpectQuery(`SELECT count\(\*\) FROM "courses" WHERE instructor ILIKE .+ AND duration >= .+ AND duration <= `).
		WithArgs("%silva%", 10, 40).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE instructor ILIKE .+ ORDER BY "duration" DESC,"id" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.ListPaginated(context.Background(),
		model.CourseFilter{Instructor: "silva", DurationMin: &minDuration, DurationMax: &maxDuration},
		model.ListParams{Page: 1, Limit: 5, SortBy: "duration", Order: model.SortDesc})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_ListPaginated_ExactDuration(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCourseRepository(db)
	duration := 40

	mock.ExpectQuery(`SELECT count\(\*\) FROM "courses" WHERE name ILIKE .+ AND duration = `).
		WithArgs("%TypeScript%", 40).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE name ILIKE .+ AND duration = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.ListPaginated(context.Background(),
		model.CourseFilter{Name: "TypeScript", Duration: &duration},
		model.ListParams{Page: 1, Limit: 5, SortBy: "createdAt", Order: model.SortDesc})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Exists(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "courses" WHERE id =`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnrollmentRepository_ListPaginated_FiltersByStatus(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "enrollments" WHERE "status" = .+ AND "course_id" =`).
		WithArgs("completed", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "enrollments" WHERE "status" = .+ AND "course_id" = .+ ORDER BY "enrolled_at" DESC,"id" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.ListPaginated(context.Background(),
		model.EnrollmentFilter{Status: model.EnrollmentCompleted, CourseID: 2},
		model.ListParams{Page: 1, Limit: 10, SortBy: "enrolledAt", Order: model.SortDesc})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_ExistsForPair(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "enrollments" WHERE student_id = .+ AND course_id =`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.ExistsForPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnrollmentRepository_ListByStudent(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEnrollmentRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "enrollments" WHERE "student_id" = .+ ORDER BY "enrolled_at" DESC`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "status", "enrolled_at"}).
			AddRow(1, 5, 2, "active", now))
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE "courses"."id" =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Go Basics"))
	mock.ExpectQuery(`SELECT \* FROM "students" WHERE "students"."id" =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Ana"))

	enrollments, err := repo.ListByStudent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.NotNil(t, enrollments[0].Student)
	require.NotNil(t, enrollments[0].Course)
	assert.Equal(t, "Ana", enrollments[0].Student.Name)
	assert.Equal(t, "Go Basics", enrollments[0].Course.Name)
	assert.Equal(t, model.EnrollmentActive, enrollments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
