package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	Name  *string `validate:"required"`
	Email *string `validate:"required"`
}

func strPtr(s string) *string { return &s }

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := TestStruct{
			Name:  strPtr("le guin"),
			Email: strPtr("ursula_le_guin@gmail.com"),
		}

		err := ValidateStruct(&s)
		assert.NoError(t, err)
	})

	t.Run("present but empty values pass", func(t *testing.T) {
		s := TestStruct{
			Name:  strPtr(""),
			Email: strPtr(""),
		}

		assert.NoError(t, ValidateStruct(&s))
	})

	t.Run("missing required field", func(t *testing.T) {
		s := TestStruct{
			Email: strPtr("ursula_le_guin@gmail.com"),
		}

		err := ValidateStruct(&s)
		assert.Error(t, err)

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "Name")
		assert.NotContains(t, fields, "Email")
	})
}

func TestNewValidationError(t *testing.T) {
	t.Run("creates validation error with field details", func(t *testing.T) {
		err := ValidateStruct(&TestStruct{})
		require.Error(t, err)

		validationErr, ok := err.(*ValidationError)
		require.True(t, ok)

		assert.Equal(t, "Validation failed", validationErr.Message)
		assert.Equal(t, "Name is required", validationErr.Fields["Name"])
		assert.Equal(t, "Email is required", validationErr.Fields["Email"])
	})

	t.Run("other tags get a generic message", func(t *testing.T) {
		type bounded struct {
			Name string `validate:"max=3"`
		}

		err := ValidateStruct(&bounded{Name: "le guin"})
		require.Error(t, err)
		assert.Equal(t, "Name validation failed on 'max' tag", GetValidationFields(err)["Name"])
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Test validation error",
		Fields: map[string]string{
			"field1": "error1",
		},
	}

	assert.Equal(t, "Test validation error", err.Error())
}

func TestGetValidationFields(t *testing.T) {
	t.Run("gets fields from validation error", func(t *testing.T) {
		fields := map[string]string{
			"field1": "error1",
			"field2": "error2",
		}
		err := &ValidationError{
			Message: "test",
			Fields:  fields,
		}

		extracted := GetValidationFields(err)
		assert.Equal(t, fields, extracted)
	})

	t.Run("returns nil for non-validation error", func(t *testing.T) {
		err := assert.AnError

		extracted := GetValidationFields(err)
		assert.Nil(t, extracted)
	})
}

func TestFieldDetails(t *testing.T) {
	err := &ValidationError{Message: "test", Fields: map[string]string{"Email": "Email is required"}}
	assert.Equal(t, map[string]interface{}{"Email": "Email is required"}, FieldDetails(err))
	assert.Nil(t, FieldDetails(assert.AnError))
}
