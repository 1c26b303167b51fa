package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/go-playground/validator/v10"
)

// emailPattern is the local@domain.tld shape accepted by the dashboard form.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldMessages maps json field name and failed tag to the message shown next to the form field.
var fieldMessages = map[string]map[string]string{
	"property":       {"notblank": "Property is required"},
	"tenantName":     {"notblank": "Tenant name is required"},
	"tenantEmail":    {"notblank": "Tenant email is required", "coiemail": "Invalid email format"},
	"unit":           {"notblank": "Unit is required"},
	"coiName":        {"notblank": "COI name is required"},
	"expiryDate":     {"notblank": "Expiry date is required", "isodate": "Expiry date must be a YYYY-MM-DD date"},
	"status":         {"coistatus": "Invalid status"},
	"reminderStatus": {"reminderstatus": "Invalid reminder status"},
}

// ValidationError reports every invalid field of a COI at once, keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err carries per-field validation failures.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var coiValidator = newCOIValidator()

func newCOIValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "coiemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	mustRegister(v, "coistatus", func(fl validator.FieldLevel) bool {
		return model.COIStatus(fl.Field().String()).Valid()
	})
	mustRegister(v, "reminderstatus", func(fl validator.FieldLevel) bool {
		return model.ReminderStatus(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidateCOIInput checks every field of in and returns a *ValidationError listing all failures.
// Defaults must already be applied: an empty status is rejected.
func ValidateCOIInput(in model.COIInput) error {
	err := coiValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate coi: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

// withDefaults fills the enum fields a new COI may omit.
func withDefaults(in model.COIInput) model.COIInput {
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	if in.ReminderStatus == "" {
		in.ReminderStatus = model.ReminderNotSent
	}
	return in
}
