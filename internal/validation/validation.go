// Package validation decodes inbound JSON bodies into typed, defaulted
// payloads and reports every field violation at once.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedPayload = errors.New("malformed JSON payload")

// FieldError is one violation, addressed by its dotted json path
// (for example makers[0].username).
type FieldError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error carries the complete set of field violations for one payload.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Paths lists the offending field paths in report order.
func (e *Error) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("datetime_iso", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// ParseTimestamp accepts RFC 3339 date-times with optional fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// bind decodes body into dst and validates it. Defaults must already be set
// on dst; keys absent from the body leave them untouched.
func bind(body []byte, dst any) error {
	var fields []FieldError
	seen := make(map[string]bool)

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		// Nothing below a non-object body can be checked.
		return &Error{Fields: []FieldError{{
			Path:    "",
			Code:    "invalid_type",
			Message: "expected object, received " + rawKind(body),
		}}}
	}

	d := &decoder{}
	d.decode(body, reflect.ValueOf(dst).Elem(), "")
	for _, f := range d.fields {
		seen[f.Path] = true
	}
	fields = append(fields, d.fields...)

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			path := fieldPath(fe)
			if seen[path] {
				continue
			}
			seen[path] = true
			fields = append(fields, FieldError{Path: path, Code: fe.Tag(), Message: message(fe)})
		}
	}

	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

// presentKeys reports which top-level keys the body carries, including keys
// explicitly set to null.
func presentKeys(body []byte) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	keys := make(map[string]bool, len(raw))
	for k := range raw {
		keys[k] = true
	}
	return keys, nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid absolute URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime_iso":
		return "must be an ISO-8601 date-time"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
