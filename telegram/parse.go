package telegram

import (
	"strings"

	"introspeechdev/speech"
)

type formField int

const (
	fieldNone formField = iota
	fieldName
	fieldIdentity
	fieldBackground
	fieldWhatYouDo
	fieldMotivation
)

var labelFields = map[string]formField{
	"name":           fieldName,
	"identity":       fieldIdentity,
	"role":           fieldIdentity,
	"identity/role":  fieldIdentity,
	"background":     fieldBackground,
	"what i do":      fieldWhatYouDo,
	"what you do":    fieldWhatYouDo,
	"what they do":   fieldWhatYouDo,
	"motivation":     fieldMotivation,
	"why":            fieldMotivation,
	"motivation/why": fieldMotivation,
}

// ParseIntroMessage reads "Label: value" lines into a form. Lines without a
// known label continue the previous field. ok is false when no label was
// recognized at all.
func ParseIntroMessage(text string) (form speech.FormData, ok bool) {
	values := map[formField][]string{}
	current := fieldNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if label, value, found := strings.Cut(line, ":"); found {
			if f, known := labelFields[strings.ToLower(strings.TrimSpace(label))]; known {
				current = f
				ok = true
				if v := strings.TrimSpace(value); v != "" {
					values[current] = append(values[current], v)
				}
				continue
			}
		}
		if current != fieldNone {
			values[current] = append(values[current], line)
		}
	}

	join := func(f formField) string { return strings.Join(values[f], " ") }
	form = speech.FormData{
		Name:       join(fieldName),
		Identity:   join(fieldIdentity),
		Background: join(fieldBackground),
		WhatYouDo:  join(fieldWhatYouDo),
		Motivation: join(fieldMotivation),
	}
	return form, ok
}
