package speech

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFieldLength bounds every form field, in characters.
const MaxFieldLength = 2000

type fieldRule struct {
	name     string
	value    func(FormData) string
	required bool
}

var fieldRules = []fieldRule{
	{name: "name", value: func(f FormData) string { return f.Name }, required: true},
	{name: "identity", value: func(f FormData) string { return f.Identity }, required: true},
	{name: "background", value: func(f FormData) string { return f.Background }},
	{name: "whatYouDo", value: func(f FormData) string { return f.WhatYouDo }, required: true},
	{name: "motivation", value: func(f FormData) string { return f.Motivation }, required: true},
}

// Validate checks every field of form and reports all failures at once.
// It returns nil or a *ValidationError.
func Validate(form FormData) error {
	var errs []FieldError
	for _, rule := range fieldRules {
		v := rule.value(form)
		if rule.required && strings.TrimSpace(v) == "" {
			errs = append(errs, FieldError{Field: rule.name, Message: "Required"})
			continue
		}
		if utf8.RuneCountInString(v) > MaxFieldLength {
			errs = append(errs, FieldError{
				Field:   rule.name,
				Message: fmt.Sprintf("Must be at most %d characters", MaxFieldLength),
			})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
