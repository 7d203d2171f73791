package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nikitalevshuk/university-tests/backend/models"
)

var (
	cyrillicName    = regexp.MustCompile(`^[А-Яа-яЁё\-]+$`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_+\-=]+$`)

	answers = map[string]struct{}{"да": {}, "нет": {}, "не знаю": {}}

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "cyrillic_name", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		n := utf8.RuneCountInString(s)
		return n >= 2 && n <= 100 && cyrillicName.MatchString(s)
	})
	mustRegister(v, "password_charset", func(fl validator.FieldLevel) bool {
		return passwordCharset.MatchString(fl.Field().String())
	})
	mustRegister(v, "faculty", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseFaculty(fl.Field().String())
		return ok
	})
	mustRegister(v, "course", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseCourse(int(fl.Field().Int()))
		return ok
	})
	mustRegister(v, "answer", func(fl validator.FieldLevel) bool {
		_, ok := answers[strings.ToLower(fl.Field().String())]
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateStruct returns nil when s passes its `validate` tags, otherwise
// an AppError with one message per failing field.
func ValidateStruct(s interface{}) *AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationFailed(map[string]string{"body": err.Error()})
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = validationMessage(fe)
	}
	return ValidationFailed(details)
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "Struct.field[0]"; drop the struct name.
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "cyrillic_name":
		return "must be 2-100 Cyrillic letters or hyphens"
	case "password_charset":
		return "may contain only Latin letters, digits and !@#$%^&*()_+-="
	case "faculty":
		return "unknown faculty"
	case "course":
		return "course must be between 1 and 6"
	case "answer":
		return "answer must be one of: да, нет, не знаю"
	case "min", "max":
		return "length must be " + fe.Tag() + " " + fe.Param()
	default:
		return "invalid value"
	}
}

// NormalizeName trims a registered name part and title-cases it, so
// "анна-мария" is stored as "Анна-Мария".
func NormalizeName(s string) string {
	// Caser is stateful, one per call.
	return cases.Title(language.Russian).String(strings.TrimSpace(s))
}
