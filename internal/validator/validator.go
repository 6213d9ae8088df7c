package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Vasugoli/classTrack/internal/device"
	"github.com/Vasugoli/classTrack/internal/models"
)

// ValidationError represents a single failed rule on a request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

var classCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)

// Validator wraps struct validation with the domain's custom rules
// registered.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

// Validate checks a request struct against its tags.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   fieldErr.Field(),
				Message: v.errorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errors
}

// registerDomainRules registers custom rule validators.
func (v *Validator) registerDomainRules() {
	// Token lifetime (30-300 seconds)
	v.validate.RegisterValidation("token_ttl", func(fl validator.FieldLevel) bool {
		ttl := fl.Field().Int()
		return ttl >= models.MinTokenTTLSeconds && ttl <= models.MaxTokenTTLSeconds
	})

	// Client platform must be a recognized value
	v.validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return device.ValidPlatform(fl.Field().String())
	})

	// Class codes are short identifiers, no whitespace
	v.validate.RegisterValidation("class_code", func(fl validator.FieldLevel) bool {
		return classCodePattern.MatchString(fl.Field().String())
	})

	// Attendance status enum
	v.validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		switch models.AttendanceStatus(fl.Field().String()) {
		case models.StatusPresent, models.StatusAbsent, models.StatusLate:
			return true
		}
		return false
	})

	// Audit action enum, for admin log filters
	v.validate.RegisterValidation("audit_action", func(fl validator.FieldLevel) bool {
		candidate := models.AuditAction(fl.Field().String())
		for _, action := range models.AuditActions {
			if action == candidate {
				return true
			}
		}
		return false
	})

	// Schedule times are HH:MM
	v.validate.RegisterValidation("time_hhmm", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != 5 || value[2] != ':' {
			return false
		}
		hh := value[:2]
		mm := value[3:]
		if !isDigits(hh) || !isDigits(mm) {
			return false
		}
		return hh <= "23" && mm <= "59"
	})
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (v *Validator) errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "token_ttl":
		return fmt.Sprintf("must be between %d and %d seconds", models.MinTokenTTLSeconds, models.MaxTokenTTLSeconds)
	case "platform":
		return "is not a recognized platform"
	case "class_code":
		return "must be 2-32 characters of letters, digits, underscore or hyphen"
	case "attendance_status":
		return "must be one of PRESENT, ABSENT, LATE"
	case "audit_action":
		return "is not a recognized audit action"
	case "time_hhmm":
		return "must be in HH:MM format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(err.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
