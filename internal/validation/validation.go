package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
)

// New returns a validator that reports fields by their json name and knows
// the pincode (6 digits) and phone (10 digits) tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pincode", matches(pincodePattern))
	_ = v.RegisterValidation("phone", matches(phonePattern))
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Fields flattens validator errors into field -> message. Any other error is
// reported under the "_" key.
func Fields(err error) map[string]string {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return f + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be >= %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be <= %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", f, fe.Param())
	case "email":
		return f + " must be a valid email address"
	case "pincode":
		return f + " must be exactly 6 digits"
	case "phone":
		return f + " must be exactly 10 digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return f + " is invalid"
	}
}
