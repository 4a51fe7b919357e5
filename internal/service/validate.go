package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// MaxCapacity caps the capacity of a single event.
const MaxCapacity = 100_000

// FieldError is a user-facing message for one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed input. It is always returned before any
// gateway call is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// FieldMap flattens Fields for JSON responses.
func (e *ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// Validator wraps go-playground/validator with the app's rubric rules and
// English messages keyed by JSON field name.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var customTags = []struct {
	tag  string
	text string
	fn   validator.Func
}{
	{"gapoint", "{0} must be one of GA1 to GA8", gaPointValidation},
	{"gascore", "{0} must be a whole number between 0 and 3", intRange(model.MinGAScore, model.MaxGAScore)},
	{"galevel", "{0} must be a whole number between 1 and 3", intRange(model.MinLevel, model.MaxLevel)},
	{"passwordbytes", fmt.Sprintf("{0} must be at most %d bytes", model.MaxPasswordBytes), passwordBytesValidation},
	{"positiveint", fmt.Sprintf("{0} must be a whole number between 1 and %d", MaxCapacity), intRange(1, MaxCapacity)},
}

// NewValidator builds a Validator.
func NewValidator() *Validator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = fld.Tag.Get("form")
		}
		if name == "-" {
			return ""
		}
		return name
	})

	for _, c := range customTags {
		_ = validate.RegisterValidation(c.tag, c.fn)
		registerTranslation(validate, translator, c.tag, c.text)
	}
	registerTranslation(validate, translator, "required", "{0} is required")

	return &Validator{validate: validate, translator: translator}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates v and converts failures into a *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}

func gaPointValidation(fl validator.FieldLevel) bool {
	_, err := model.ParseGAPoint(fl.Field().String())
	return err == nil
}

func passwordBytesValidation(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= model.MaxPasswordBytes
}

func intRange(lo, hi int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= lo && n <= hi
	}
}

// atoi parses a value that already passed an intRange rule.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
