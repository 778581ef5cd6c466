package validation

import (
	"math"
	"testing"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,role"`
}

type skinfoldRequest struct {
	WeightKg  float64          `json:"weightKg" validate:"finite,gt=0"`
	Skinfolds domain.Skinfolds `json:"skinfolds"`
	Sex       string           `json:"sex" validate:"sex"`
}

func TestStruct(t *testing.T) {
	v := New()

	testCases := []struct {
		name   string
		input  interface{}
		fields []string
	}{
		{
			name:  "valid registration",
			input: registerRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: "STUDENT"},
		},
		{
			name:   "bad email and short password",
			input:  registerRequest{Name: "Ana", Email: "ana", Password: "123", Role: "STUDENT"},
			fields: []string{"email", "password"},
		},
		{
			name:   "unknown role",
			input:  registerRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: "ADMIN"},
			fields: []string{"role"},
		},
		{
			name:   "negative skinfold is reported by nested path",
			input:  skinfoldRequest{WeightKg: 80, Skinfolds: domain.Skinfolds{Chest: -1}},
			fields: []string{"skinfolds.chest"},
		},
		{
			name:   "non-finite values",
			input:  skinfoldRequest{WeightKg: math.Inf(1), Skinfolds: domain.Skinfolds{Thigh: math.NaN()}},
			fields: []string{"weightKg", "skinfolds.thigh"},
		},
		{
			name:   "unknown sex",
			input:  skinfoldRequest{WeightKg: 80, Sex: "other"},
			fields: []string{"sex"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tc.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tc.fields))
		})
	}
}

func TestRegisterRulesReportsFailures(t *testing.T) {
	ok := func(validator.FieldLevel) bool { return true }

	err := registerRules(validator.New(), []rule{{tag: "finite", fn: ok}, {tag: "", fn: ok}})
	assert.ErrorContains(t, err, `register ""`)

	err = registerRules(validator.New(), []rule{{tag: "positive", fn: nil}})
	assert.ErrorContains(t, err, `register "positive"`)

	require.NoError(t, registerRules(validator.New(), customRules))
	assert.NotPanics(t, func() { New() })
}
