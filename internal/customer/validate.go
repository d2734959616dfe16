package customer

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// ValidationErrors maps a form field (its JSON name) to a display message.
// An empty map means the data is valid.
type ValidationErrors map[string]string

// HasErrors reports whether any field failed.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Validator checks Data against the checkout rules. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a validator with the storefront-specific rules registered.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("trimmed_min", trimmedMin)
	_ = v.RegisterValidation("shop_phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("shop_email", func(fl validator.FieldLevel) bool {
		email := strings.TrimSpace(fl.Field().String())
		return email == "" || emailPattern.MatchString(email)
	})

	return &Validator{v: v}
}

// Validate returns one localized message per failing field. Each rule is
// independent; all of them are evaluated.
func (val *Validator) Validate(d Data, locale i18n.Locale) ValidationErrors {
	out := ValidationErrors{}

	err := val.v.Struct(d)
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable for non-struct input.
		out["form"] = i18n.T(locale, i18n.KeyUnexpected)
		return out
	}

	for _, fe := range fieldErrs {
		out[fe.Field()] = i18n.T(locale, "validation."+fe.Field())
	}
	return out
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}
