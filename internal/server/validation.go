package server

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength = 20
	maxWordLength = 40
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func requestValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
			name := normalizeText(fl.Field().String())
			return name != "" && len(name) <= maxNameLength && isSafeText(name)
		})
	})
	return validate
}

// validateRequest runs struct tags and flattens the first violation into a
// client-facing message.
func validateRequest(payload any) string {
	err := requestValidator().Struct(payload)
	if err == nil {
		return ""
	}
	var violations validator.ValidationErrors
	if !asValidationErrors(err, &violations) || len(violations) == 0 {
		return "invalid request"
	}
	field := violations[0]
	switch field.Tag() {
	case "required":
		return strings.ToLower(field.Field()) + " is required"
	case "max":
		return strings.ToLower(field.Field()) + " is too long"
	case "min", "gte":
		return strings.ToLower(field.Field()) + " is too small"
	case "oneof":
		return strings.ToLower(field.Field()) + " must be one of " + field.Param()
	case "playername":
		return "name must be printable text of 20 characters or fewer"
	default:
		return strings.ToLower(field.Field()) + " is invalid"
	}
}

func asValidationErrors(err error, dest *validator.ValidationErrors) bool {
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*dest = violations
	return true
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.':
			continue
		default:
			return false
		}
	}
	return true
}
