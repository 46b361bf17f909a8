package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ShortsRequest asks for shorts ideas. Topics may be empty, in which case the
// caller fetches the first trending page itself.
type ShortsRequest struct {
	Topics    []Topic `json:"topics" validate:"omitempty,max=200,dive"`
	MaxTopics int     `json:"max_topics" validate:"gte=0"`
}

// VideoSearchRequest asks for B-roll candidates for a free-text topic.
type VideoSearchRequest struct {
	Topic      string `json:"topic" validate:"required,max=300"`
	MaxResults int    `json:"max_results" validate:"gte=0"`
}

// VideoSelectRequest asks for a candidate to be downloaded and stored.
type VideoSelectRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request struct and returns the first failure as a
// *ValidationError wrapping one of the sentinels above.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	fe := verrs[0]
	return NewValidationError(fieldPath(fe), fmt.Sprint(fe.Value()), sentinelFor(fe.Tag()))
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func sentinelFor(tag string) error {
	switch tag {
	case "required":
		return ErrMissingField
	case "url":
		return ErrInvalidURL
	case "max":
		return ErrTooLong
	case "gte", "lte", "min":
		return ErrOutOfRange
	default:
		return ErrInvalidRequest
	}
}

// Clamp bounds n to [lo, hi], substituting def when n is zero.
func Clamp(n, def, lo, hi int) int {
	if n == 0 {
		n = def
	}
	return max(lo, min(n, hi))
}
