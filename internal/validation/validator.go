package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator checks request structs against their `validate` tags and reports
// failures as *domain.ValidationError keyed by JSON field path.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	validate := validator.New()

	// Report fields by their JSON name so clients see the keys they sent.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	if err := registerRules(validate, customRules); err != nil {
		panic(fmt.Sprintf("validation: %v", err))
	}
	return &Validator{validate: validate}
}

// rule is a custom tag and its check.
type rule struct {
	tag string
	fn  validator.Func
}

var customRules = []rule{
	// finite rejects NaN and ±Inf.
	{"finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		}
		return true
	}},
	{"role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	}},
	{"sex", func(fl validator.FieldLevel) bool {
		s := domain.Sex(fl.Field().String())
		return s == "" || s == domain.SexMale || s == domain.SexFemale
	}},
}

func registerRules(validate *validator.Validate, rules []rule) error {
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("register %q: %w", r.tag, err)
		}
	}
	return nil
}

// Struct validates s. It returns nil or a *domain.ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if _, seen := fields[path]; !seen {
			fields[path] = message(fe)
		}
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "createAssessmentRequest.skinfolds.chest" -> "skinfolds.chest".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "finite":
		return "must be a finite number"
	case "role":
		return "must be TRAINER or STUDENT"
	case "sex":
		return "must be male or female"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
