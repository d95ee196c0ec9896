package main

import (
	"context"
	"fmt"
	stdlog "log"
	"time"

	"github.com/stemsi/course-registry/internal/config"
	"github.com/stemsi/course-registry/internal/database"
	"github.com/stemsi/course-registry/internal/logger"
	"github.com/stemsi/course-registry/internal/model"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

var courses = []model.Course{
	{Name: "TypeScript Avançado", Description: strPtr("Aprenda TypeScript do zero ao avançado"), Instructor: "João Silva", Duration: 40},
	{Name: "Node.js e Express", Description: strPtr("Construa APIs RESTful com Node.js"), Instructor: "Maria Santos", Duration: 35},
	{Name: "Banco de Dados com Prisma", Description: strPtr("ORM moderno para Node.js"), Instructor: "Pedro Costa", Duration: 25},
}

var students = []model.Student{
	{Name: "Ana Paula", Email: "ana@example.com", Phone: "(11) 98888-7777"},
	{Name: "Carlos Eduardo", Email: "carlos@example.com", Phone: "(11) 97777-6666"},
}

// enrollments pairs students[i] with courses[j].
var enrollments = [][2]int{{0, 0}, {1, 1}}

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Invalid configuration:\n%v", err)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	db, err := database.NewGorm(pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ORM")
	}

	// Rows are matched on their unique keys, so running the seed twice
	// leaves the data unchanged.
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range courses {
			if err := tx.Where(model.Course{Name: courses[i].Name}).FirstOrCreate(&courses[i]).Error; err != nil {
				return fmt.Errorf("seed course %q: %w", courses[i].Name, err)
			}
		}
		for i := range students {
			if err := tx.Where(model.Student{Email: students[i].Email}).FirstOrCreate(&students[i]).Error; err != nil {
				return fmt.Errorf("seed student %q: %w", students[i].Email, err)
			}
		}
		for _, pair := range enrollments {
			e := model.Enrollment{
				StudentID: students[pair[0]].ID,
				CourseID:  courses[pair[1]].ID,
				Status:    model.EnrollmentActive,
			}
			err := tx.Where(model.Enrollment{StudentID: e.StudentID, CourseID: e.CourseID}).
				Omit("Student", "Course").
				FirstOrCreate(&e).Error
			if err != nil {
				return fmt.Errorf("seed enrollment %d/%d: %w", e.StudentID, e.CourseID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	log.Info().
		Int("courses", len(courses)).
		Int("students", len(students)).
		Int("enrollments", len(enrollments)).
		Msg("Seed completed")
}
