package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
)

// PublicMessager is implemented by errors that carry text safe to show to
// the operator.
type PublicMessager interface {
	PublicMessage() string
}

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Error sends a JSON error response. Backend failures keep the backend
// status (502 when no response arrived); a *domain.AppError code is mapped to
// its HTTP status; anything else is a 500.
func Error(c *gin.Context, err error) {
	status, msg := ErrorStatus(err)
	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// ErrorStatus returns the HTTP status and operator-facing message for err.
func ErrorStatus(err error) (int, string) {
	status := domain.HTTPStatusCode(err)
	msg := "internal error"

	var appErr *domain.AppError
	var apiErr *api.Error
	switch {
	case errors.As(err, &appErr):
		msg = appErr.Message
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		if !apiErr.Transport && apiErr.Status >= 400 && apiErr.Status <= 599 {
			status = apiErr.Status
		}
		msg = domain.FromStatus(apiErr.Status, apiErr.Message, nil).Message
	}

	var pm PublicMessager
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		msg = pm.PublicMessage()
	}
	return status, msg
}

// List sends a 200 JSON response intended for paginated list results.
// result is typically a domain.Page[T] or a store.State[T].
func List(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    result,
	})
}

// ValidationError sends a 400 JSON response with per-field validation error details.
func ValidationError(c *gin.Context, err error) {
	writeValidationError(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		writeValidationError(c, err, obj)
		return false
	}
	return true
}

func writeValidationError(c *gin.Context, err error, obj any) {
	fields, ok := FieldErrors(err, obj)
	if !ok {
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: "bad request",
			Data:    nil,
		})
		return
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

// FieldErrors converts validator errors into field -> message pairs. Field
// names come from the form tag, then the json tag, of obj when available,
// else the lowercased struct field. It reports false when err is not a
// validation error.
func FieldErrors(err error, obj any) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	names := fieldNames(obj)
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		out[name] = fieldMessage(fe)
	}
	return out, true
}

// fieldMessage renders one validation failure as operator-facing text.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "url", "http_url":
		return "Must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "Must be a date in the format " + fe.Param()
	case "gtefield", "gtfield":
		return "Must not be before " + strings.ToLower(fe.Param())
	}
	if fe.Param() != "" {
		return "Failed on " + fe.Tag() + "=" + fe.Param()
	}
	return "Failed on " + fe.Tag()
}

// fieldNames maps struct field names to their form or json tag names.
func fieldNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := tagName(f.Tag.Get("form")); name != "" {
			m[f.Name] = name
			continue
		}
		if name := tagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// tagName extracts the field name from a struct tag value.
func tagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
