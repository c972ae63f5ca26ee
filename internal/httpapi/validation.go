package httpapi

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report validation errors under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// FieldErrors maps a request field to its human-readable validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

var errMalformedBody = errors.New("malformed request body")

// bindJSON decodes the request body into obj and validates its binding tags.
// An empty body is validated as an empty object, so missing fields are reported
// per field instead of as a decoding error.
func bindJSON(c *gin.Context, obj any) (FieldErrors, error) {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	out := FieldErrors{}
	for _, fe := range ve {
		field, msg := describe(fe)
		out.Add(field, msg)
	}
	return out, nil
}

func describe(fe validator.FieldError) (field, msg string) {
	field = fe.Field()
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return field, fmt.Sprintf("The %s field is required.", label)
	case "email":
		return field, fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		return field, fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
	case "max":
		return field, fmt.Sprintf("The %s must not be greater than %s characters.", label, fe.Param())
	case "eqfield":
		// Confirmation fields report against the field they confirm.
		target := strings.ToLower(fe.Param())
		return target, fmt.Sprintf("The %s confirmation does not match.", target)
	default:
		return field, fmt.Sprintf("The %s is invalid.", label)
	}
}
