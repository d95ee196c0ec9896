package validator

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/course-registry/internal/apperror"
	"github.com/stemsi/course-registry/internal/model"
	"github.com/stemsi/course-registry/internal/response"
)

// phonePattern accepts digits with optional +, spaces, dashes and parentheses,
// e.g. "11988887777" or "(11) 98888-7777". Length is capped by the max tag.
var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{8,20}$`)

var (
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers field naming, the custom "phone" rule and English
// translations on Gin's binding engine. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Report fields by their JSON (or query) name.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		// Validate the value of a present NullString; absent or null skips
		// omitempty rules.
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if n, ok := field.Interface().(model.NullString); ok && n.Valid {
				return n.Value
			}
			return nil
		}, model.NullString{})

		_ = v.RegisterValidation("phone", func(fl govalidator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterTranslation("phone", trans,
			func(ut ut.Translator) error {
				return ut.Add("phone", "{0} must be a valid phone number", true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				msg, _ := ut.T("phone", fe.Field())
				return msg
			},
		)
	})
}

// TranslateErrors turns a binding/validation error into field errors.
// Errors that do not point at a field are reported under fallbackField.
func TranslateErrors(err error, fallbackField string) []response.FieldError {
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]response.FieldError, 0, len(ve))
		for _, fe := range ve {
			msg := fe.Error()
			if trans != nil {
				msg = fe.Translate(trans)
			}
			fields = append(fields, response.FieldError{Field: fe.Field(), Message: msg})
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []response.FieldError{{
			Field:   typeErr.Field,
			Message: typeErr.Field + " must be of type " + typeErr.Type.String(),
		}}
	}

	if errors.Is(err, io.EOF) {
		return []response.FieldError{{Field: fallbackField, Message: "request body must be a JSON object"}}
	}

	// Not a validation error (e.g., JSON syntax error).
	return []response.FieldError{{Field: fallbackField, Message: err.Error()}}
}

// Bind binds and validates the JSON request body into dst.
func Bind(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Invalid(TranslateErrors(err, "body"))
	}
	return nil
}

// BindQuery binds and validates the query string into dst.
func BindQuery(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperror.InvalidQuery(TranslateErrors(err, "query"))
	}
	return nil
}
