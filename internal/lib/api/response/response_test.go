package response

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Date  string `validate:"required,datetime=2006-01-02"`
	Kind  string `validate:"required,oneof=video rental"`
	Email string `validate:"omitempty,email"`
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := validator.New().Struct(sample{Date: "10/01/2025", Kind: "dance", Email: "nope"})
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)

	resp := ValidationError(errs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Date must match layout 2006-01-02")
	assert.Contains(t, resp.Error, "field Kind must be one of [video rental]")
	assert.Contains(t, resp.Error, "field Email is not a valid email")
}

func TestOKAndError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Response{Status: StatusOK}, OK())
	assert.Equal(t, Response{Status: StatusError, Error: "boom"}, Error("boom"))
}
