package speech

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() FormData {
	return FormData{
		Name:       "Jordan Lee",
		Identity:   "product designer",
		WhatYouDo:  "I help small teams ship apps",
		Motivation: "I believe good design saves people time",
	}
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	assert.NoError(t, Validate(validForm()))

	withBackground := validForm()
	withBackground.Background = "ten years in agencies"
	assert.NoError(t, Validate(withBackground))
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	err := Validate(FormData{Name: "   ", Background: ""})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{
		{Field: "name", Message: "Required"},
		{Field: "identity", Message: "Required"},
		{Field: "whatYouDo", Message: "Required"},
		{Field: "motivation", Message: "Required"},
	}, verr.Errors)
}

func TestValidateLength(t *testing.T) {
	form := validForm()
	form.Motivation = strings.Repeat("a", MaxFieldLength)
	assert.NoError(t, Validate(form))

	form.Motivation = strings.Repeat("a", MaxFieldLength+1)
	form.Background = strings.Repeat("é", MaxFieldLength+1)

	var verr *ValidationError
	require.ErrorAs(t, Validate(form), &verr)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, "background", verr.Errors[0].Field)
	assert.Equal(t, "motivation", verr.Errors[1].Field)
	assert.Equal(t, "Must be at most 2000 characters", verr.Errors[1].Message)
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	form := validForm()
	form.Name = strings.Repeat("é", MaxFieldLength)
	assert.NoError(t, Validate(form))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "name", Message: "Required"}}}
	assert.Equal(t, "invalid input data: name: Required", err.Error())
}
