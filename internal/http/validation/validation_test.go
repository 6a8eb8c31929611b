package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Email string `json:"email" binding:"required,email" validate:"required,email"`
	Name  string `json:"name" binding:"required,min=2" validate:"required,min=2"`
}

func TestFromBindErrorMapsFields(t *testing.T) {
	t.Parallel()

	v := validator.New()
	err := v.Struct(sampleForm{Email: "not-an-email", Name: "x"})
	require.Error(t, err)

	fields := FromBindError(err, &sampleForm{})
	require.Equal(t, "Enter a valid email address.", fields["email"])
	require.Equal(t, "Must be at least 2 characters.", fields["name"])
}

func TestFromBindErrorFallsBackForOtherErrors(t *testing.T) {
	t.Parallel()

	fields := FromBindError(assertedErr{}, &sampleForm{})
	require.Equal(t, "The submitted data is invalid.", fields["_"])
}

type assertedErr struct{}

func (assertedErr) Error() string { return "json: cannot unmarshal" }
