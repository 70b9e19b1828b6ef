package val_test

import (
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/rxcommand/val"
)

type signup struct {
	Email string   `json:"email" validate:"required,email"`
	Name  string   `json:"name"  validate:"min=3"`
	Age   int      `json:"age"   validate:"gte=18"`
	Plan  string   `json:"plan"  validate:"oneof=free pro"`
	Tags  []string `json:"tags"  validate:"len=2"`
}

func TestValidateSchema(t *testing.T) {
	valid := signup{Email: "a@b.io", Name: "ann", Age: 30, Plan: "pro", Tags: []string{"x", "y"}}
	require.NoError(t, val.ValidateSchema(valid))

	err := val.ValidateSchema(signup{Email: "nope", Name: "al", Age: 9, Plan: "gold"})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, val.CodeValidationFailed))

	e := errx.AsErrorX(err)
	assert.Equal(t, errx.T_Validation, e.Type())
	assert.Equal(t, map[string]string{
		"email": "must be a valid email",
		"name":  "must be at least 3 characters",
		"age":   "must be greater than or equal to 18",
		"plan":  "must be one of: free, pro",
		"tags":  "must have exactly 2 items",
	}, map[string]string(e.Fields()))
}

func TestIsStruct(t *testing.T) {
	assert.True(t, val.IsStruct(signup{}))
	assert.True(t, val.IsStruct(&signup{}))
	assert.False(t, val.IsStruct((*signup)(nil)))
	assert.False(t, val.IsStruct("x"))
	assert.False(t, val.IsStruct(nil))
}
