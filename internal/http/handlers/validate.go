package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/velotrack/go-ride-backend/internal/apierr"
)

// Context keys for values stored by the validation middleware.
const (
	validatedBodyKey = "validatedBody"
	resourceIDKey    = "resourceID"
)

// Validation errors report fields by their JSON name, not the Go field name.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// ValidateBody returns middleware that binds and validates the JSON request
// body against T. On failure it aborts with a validation error whose message
// enumerates every invalid field, in struct declaration order, joined by
// ", ". On success the decoded value is stored in the request context for the
// handler to retrieve via BodyFrom.
//
// Validation runs before authentication in the route chains, so a request
// that is both malformed and unauthenticated reports the validation error.
func ValidateBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apierr.Validation(bindMessage(err)))
			return
		}
		c.Set(validatedBodyKey, req)
		c.Next()
	}
}

// BodyFrom retrieves the value stored by ValidateBody[T]. It must only be
// called on routes where the middleware ran; the zero value is returned
// otherwise.
func BodyFrom[T any](c *gin.Context) T {
	v, _ := c.Get(validatedBodyKey)
	req, _ := v.(T)
	return req
}

// ValidateIDParam returns middleware that parses the :id path parameter as a
// positive integer, aborting with a validation error otherwise. The parsed
// value is stored in the request context for idFrom.
func ValidateIDParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			fail(c, apierr.Validation("id must be a positive integer"))
			return
		}
		c.Set(resourceIDKey, uint(id))
		c.Next()
	}
}

// idFrom retrieves the path id stored by ValidateIDParam.
func idFrom(c *gin.Context) uint {
	v, _ := c.Get(resourceIDKey)
	id, _ := v.(uint)
	return id
}

// bindMessage converts a binding error into a user-facing message. Field
// validation failures are enumerated per field; anything else (syntax errors,
// wrong types, empty body) collapses to a generic message so no decoder
// internals leak to clients.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid JSON body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, ", ")
}

// fieldMessage renders a single field failure.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
