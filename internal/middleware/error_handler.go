package middleware

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/apperror"
	"github.com/stemsi/course-registry/internal/response"
	"gorm.io/gorm"
)

// classified is the HTTP shape of an error.
type classified struct {
	status  int
	code    response.ErrCode
	message string
	fields  []response.FieldError
}

// uniqueKeyPattern extracts the column list from a unique violation detail,
// e.g. `Key (email)=(ana@example.com) already exists.`
var uniqueKeyPattern = regexp.MustCompile(`Key \((.+?)\)=`)

// gormErrors are gorm sentinels that describe a persistence failure.
var gormErrors = []error{
	gorm.ErrInvalidTransaction,
	gorm.ErrNotImplemented,
	gorm.ErrMissingWhereClause,
	gorm.ErrUnsupportedRelation,
	gorm.ErrPrimaryKeyRequired,
	gorm.ErrModelValueRequired,
	gorm.ErrInvalidData,
	gorm.ErrUnsupportedDriver,
	gorm.ErrRegistered,
	gorm.ErrInvalidField,
	gorm.ErrEmptySlice,
	gorm.ErrDryRunModeUnsupported,
	gorm.ErrInvalidDB,
	gorm.ErrInvalidValue,
	gorm.ErrInvalidValueOfLength,
	gorm.ErrPreloadNotAllowed,
	gorm.ErrCheckConstraintViolated,
}

// classify maps any error to a status, code and message. Checks run in
// precedence order; the first match wins.
func classify(err error, production bool) classified {
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		return classified{
			status:  http.StatusBadRequest,
			code:    validationErr.Code,
			message: response.GetMessage(validationErr.Code),
			fields:  validationErr.Fields,
		}
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return classified{status: appErr.Status, code: appErr.Code, message: appErr.Message}
	}

	var pgErr *pgconn.PgError
	isPg := errors.As(err, &pgErr)

	if (isPg && pgErr.Code == pgerrcode.UniqueViolation) || errors.Is(err, gorm.ErrDuplicatedKey) {
		field := "value"
		if isPg {
			field = uniqueField(pgErr)
		}
		return classified{
			status:  http.StatusConflict,
			code:    response.ErrConflict,
			message: fmt.Sprintf("a record with this %s already exists", field),
			fields:  []response.FieldError{{Field: field, Message: field + " must be unique"}},
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return classified{status: http.StatusNotFound, code: response.ErrNotFound, message: response.GetMessage(response.ErrNotFound)}
	}

	if (isPg && pgErr.Code == pgerrcode.ForeignKeyViolation) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return classified{status: http.StatusBadRequest, code: response.ErrInvalidReference, message: response.GetMessage(response.ErrInvalidReference)}
	}

	if isPg && (pgErr.Code == pgerrcode.RestrictViolation || pgErr.Code == pgerrcode.IntegrityConstraintViolation) {
		return classified{status: http.StatusBadRequest, code: response.ErrRequiredRelation, message: response.GetMessage(response.ErrRequiredRelation)}
	}

	if isPg && pgErr.Code == pgerrcode.NotNullViolation {
		return classified{
			status:  http.StatusBadRequest,
			code:    response.ErrNullConstraint,
			message: pgErr.ColumnName + " is required",
			fields:  []response.FieldError{{Field: pgErr.ColumnName, Message: pgErr.ColumnName + " is required"}},
		}
	}

	if isPg && pgErr.Code == pgerrcode.StringDataRightTruncationDataException {
		return classified{status: http.StatusBadRequest, code: response.ErrValidation, message: "value is too long"}
	}

	if isUnavailable(err, pgErr) {
		return classified{status: http.StatusServiceUnavailable, code: response.ErrServiceUnavailable, message: response.GetMessage(response.ErrServiceUnavailable)}
	}

	if isPg || isGormError(err) {
		msg := response.GetMessage(response.ErrDatabase)
		if !production {
			msg = err.Error()
		}
		return classified{status: http.StatusInternalServerError, code: response.ErrDatabase, message: msg}
	}

	msg := response.GetMessage(response.ErrInternal)
	if !production {
		msg = err.Error()
	}
	return classified{status: http.StatusInternalServerError, code: response.ErrInternal, message: msg}
}

func uniqueField(pgErr *pgconn.PgError) string {
	if m := uniqueKeyPattern.FindStringSubmatch(pgErr.Detail); m != nil {
		return m[1]
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "value"
}

func isUnavailable(err error, pgErr *pgconn.PgError) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pgErr == nil {
		return false
	}
	return pgerrcode.IsConnectionException(pgErr.Code) ||
		pgErr.Code == pgerrcode.AdminShutdown ||
		pgErr.Code == pgerrcode.CannotConnectNow
}

func isGormError(err error) bool {
	for _, target := range gormErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorHandler renders the last error pushed with c.Error, and any panic, as
// the standard error envelope. It must be registered before the handlers.
func ErrorHandler(log zerolog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				event := log.Error().Err(err).Str("request_id", response.RequestID(c))
				if !production {
					event = event.Str("stack", string(debug.Stack()))
				}
				event.Msg("Recovered from panic")

				c.Abort()
				render(c, log, err, production)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		render(c, log, c.Errors.Last().Err, production)
	}
}

func render(c *gin.Context, log zerolog.Logger, err error, production bool) {
	cl := classify(err, production)

	event := log.WithLevel(levelFor(cl.status))
	if !production {
		event = event.Stack()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("url", c.Request.URL.RequestURI()).
		Str("request_id", response.RequestID(c)).
		Int("status", cl.status).
		Str("code", string(cl.code)).
		Msg("Request failed")

	response.Fail(c, cl.status, cl.code, cl.message, cl.fields)
}

func levelFor(status int) zerolog.Level {
	if status >= http.StatusInternalServerError {
		return zerolog.ErrorLevel
	}
	return zerolog.WarnLevel
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrRouteNotFound,
			fmt.Sprintf("route %s %s not found", c.Request.Method, strings.TrimSuffix(c.Request.URL.Path, "/")), nil)
	}
}
