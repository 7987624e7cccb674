package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/timeutil"
)

// validate is the shared validator instance. Field constraints live in
// struct tags; the custom rules below cover the domain types.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so boundary errors match what the
	// caller actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		return timeutil.Valid(fl.Field().String())
	})

	v.RegisterValidation("attendance", func(fl validator.FieldLevel) bool {
		return AttendanceType(fl.Field().Int()).Valid()
	})

	return v
}

// validateStruct runs the validator and converts the first failure into an
// InvalidFormat error carrying the offending field, the expected rule and
// the given value.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(apperr.InvalidFormat, err, "invalid record")
	}

	fe := fieldErrs[0]
	return apperr.InvalidField(fe.Field(), "invalid value for %s: expected %s, given %v",
		fe.Field(), fe.Tag(), fe.Value())
}
