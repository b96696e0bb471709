// Package validation checks request payloads before they reach the store.
//
// Rules live in `validate` struct tags on the request types; this package
// registers the custom tags, runs go-playground/validator and converts its
// failures into errs.FieldError values keyed by the JSON field name.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"userhub/internal/errs"
)

// messages are the client-facing texts per JSON field. A field listed here
// reports the same message whichever of its rules failed.
var messages = map[string]string{
	"firstName": "First Name is required",
	"lastName":  "Last Name is required",
	"email":     "Invalid email format",
	"phone":     "Invalid phone number format",
	"isDeleted": "User cannot be deleted",
}

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
	region   string
}

// New returns a Validator whose phone rule parses numbers without a country
// prefix as belonging to region (ISO 3166-1 alpha-2, e.g. "IN").
func New(region string) *Validator {
	v := &Validator{
		validate: validator.New(),
		region:   strings.ToUpper(region),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return v.IsPhoneNumber(fl.Field().String())
	})

	return v
}

// IsPhoneNumber reports whether s is a valid phone number, reading numbers
// without an international prefix as numbers of the configured region.
func (v *Validator) IsPhoneNumber(s string) bool {
	num, err := phonenumbers.Parse(s, v.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Struct validates s and returns one FieldError per failing field, or nil
// when s is valid.
func (v *Validator) Struct(s interface{}) []errs.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []errs.FieldError{{Error: err.Error()}}
	}

	var fields []errs.FieldError
	seen := make(map[string]bool, len(validationErrors))
	for _, e := range validationErrors {
		if seen[e.Field()] {
			continue
		}
		seen[e.Field()] = true
		fields = append(fields, errs.FieldError{Field: e.Field(), Error: message(e)})
	}
	return fields
}

func message(e validator.FieldError) string {
	if msg, ok := messages[e.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
}
