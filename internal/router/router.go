package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/config"
	"github.com/stemsi/course-registry/internal/handler"
	"github.com/stemsi/course-registry/internal/middleware"
	"github.com/stemsi/course-registry/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student    *handler.StudentHandler
	Course     *handler.CourseHandler
	Enrollment *handler.EnrollmentHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures the Gin engine. Rate-limit counters live in store.
func SetupRouter(
	handlers *Handlers,
	store middleware.Store,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// Every response carries a request id, is logged, may be compressed and
	// renders errors through the same envelope.
	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.Brotli(),
		middleware.ErrorHandler(log, cfg.IsProduction()),
	)

	// ─── CORS ──────────────────────────────────────────────────────────
	// ALLOWED_ORIGINS="*" (the default) allows every origin.
	corsConfig := cors.DefaultConfig()
	if cfg.AllowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{
		"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After",
	}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// ─── Rate limiting ─────────────────────────────────────────────────
	// Two fixed-window tiers per IP: every request counts against the
	// general limit, writes also against the strict one.
	general := middleware.NewRateLimiter(store, "rl:general:",
		cfg.RateLimitMaxRequests, cfg.RateLimitWindow(), response.ErrRateLimitExceeded, log)
	strict := middleware.NewRateLimiter(store, "rl:strict:",
		cfg.StrictRateLimit(), cfg.RateLimitWindow(), response.ErrWriteRateExceeded, log)
	router.Use(
		general.Middleware(),
		middleware.Only(middleware.WriteMethods, strict.Middleware()),
	)

	router.GET("/health", handlers.Health.Health)

	// ─── Students ──────────────────────────────────────────────────────
	students := router.Group("/students")
	{
		students.GET("", handlers.Student.ListStudents)
		students.GET("/:id", handlers.Student.GetStudent)
		students.POST("", handlers.Student.CreateStudent)
		students.PATCH("/:id", handlers.Student.UpdateStudent)
		students.DELETE("/:id", handlers.Student.DeleteStudent)
	}

	// ─── Courses ───────────────────────────────────────────────────────
	courses := router.Group("/courses")
	{
		courses.GET("", handlers.Course.ListCourses)
		courses.GET("/:id", handlers.Course.GetCourse)
		courses.POST("", handlers.Course.CreateCourse)
		courses.PATCH("/:id", handlers.Course.UpdateCourse)
		courses.DELETE("/:id", handlers.Course.DeleteCourse)
	}

	// ─── Enrollments ───────────────────────────────────────────────────
	enrollments := router.Group("/enrollments")
	{
		enrollments.GET("", handlers.Enrollment.ListEnrollments)
		enrollments.GET("/student/:studentId", handlers.Enrollment.ListByStudent)
		enrollments.GET("/course/:courseId", handlers.Enrollment.ListByCourse)
		enrollments.GET("/:id", handlers.Enrollment.GetEnrollment)
		enrollments.POST("", handlers.Enrollment.CreateEnrollment)
		enrollments.PATCH("/:id", handlers.Enrollment.UpdateEnrollment)
		enrollments.DELETE("/:id", handlers.Enrollment.DeleteEnrollment)
	}

	router.NoRoute(middleware.NotFound())

	return router
}
