package speech

import (
	"strings"
)

// TargetWordCount is the speech length the prompt asks for.
const TargetWordCount = 300

type promptField struct {
	label     string
	value     func(FormData) string
	synthesis string
}

// promptFields is the decision table for the GIVEN INFORMATION block: a
// non-blank field is restated as-is, a blank one is replaced by its
// synthesis instruction.
var promptFields = []promptField{
	{
		label:     "Name",
		value:     func(f FormData) string { return f.Name },
		synthesis: "[Create a suitable professional name]",
	},
	{
		label:     "Identity/Role",
		value:     func(f FormData) string { return f.Identity },
		synthesis: "[Create a relevant professional identity]",
	},
	{
		label:     "Background",
		value:     func(f FormData) string { return f.Background },
		synthesis: "[Create compelling professional background]",
	},
	{
		label:     "What they do",
		value:     func(f FormData) string { return f.WhatYouDo },
		synthesis: "[Create meaningful work description]",
	},
	{
		label:     "Motivation/Why",
		value:     func(f FormData) string { return f.Motivation },
		synthesis: "[Create authentic personal motivation]",
	},
}

// ClicheDenylist lists words and phrases the speech must not use.
var ClicheDenylist = []string{
	`"power" or "powerful"`,
	`"unlock" or "unlocking"`,
	`"tapestry"`,
	`"picture this"`,
	`"imagine this"`,
	`"landscape" (metaphorically)`,
	`"journey" (unless literal travel)`,
	`"passion" (use "love" or "care about" instead)`,
	`"game-changer"`,
	`"cutting-edge"`,
	`"revolutionary"`,
	`"transform" or "transformation"`,
	`"leverage"`,
	`"synergy"`,
	`"paradigm"`,
	`"ecosystem"`,
}

const promptIntro = `Create a compelling 300-word self-introduction SPEECH using the Who-What-Why framework.`

const missingInfoInstructions = `INSTRUCTIONS:
- For any missing information above, create realistic and authentic details that fit together coherently
- DO NOT use placeholders like "[Your Name]" or "[Insert...]" in the final speech
- Make all created details feel genuine and specific
- Ensure all parts work together to tell a cohesive story`

const spokenRegister = `CRITICAL: This is a SPEECH to be SPOKEN out loud, not an essay to be read. Make it sound natural when spoken aloud.

Language Requirements:
- Use HIGH SCHOOL level language - simple, clear, everyday words
- Write SHORT sentences (10-15 words maximum)
- Use SHORT paragraphs (2-3 sentences each)
- NO jargon, technical terms, or complex vocabulary
- Use contractions and casual language
- Make it conversational and easy to follow

Speech Requirements:
- Include pauses, transitions, and speaking rhythms (use punctuation to indicate)
- Make it flow naturally when read aloud
- Use "you" to directly address the audience
- Include natural speaking connectors like "Now," "So," "And here's the thing..."
- Add light storytelling elements but keep language simple
- Use specific examples instead of abstract concepts`

const contentGuidelines = `Content Guidelines:
- Use the provided information exactly as given
- For missing information, create realistic details that enhance the story
- Add storytelling elements but keep language simple and clear
- Make it feel like a genuine personal story

Framework guidelines:
- WHO: Start with clear identity, add meaningful context, connect with audience
- WHAT: Describe who they help and how, use simple specific language, show results not just roles
- WHY: Share belief or turning point, make it relatable and emotional, tie why to what

Structure Requirements:
- Break into SHORT paragraphs (2-3 sentences each)
- Use simple connecting words between paragraphs
- Keep each sentence focused on one main idea
- Make transitions smooth and natural`

const closingDirective = `The speech should be exactly around 300 words, engaging, and follow the Who-What-Why structure naturally. Write it as if the person is speaking directly to a live audience with confidence but using everyday language.`

const outputFormat = `Please respond with JSON in this exact format:
{
  "speech": "The complete 300-word speech text optimized for speaking with storytelling elements",
  "wordCount": actual_word_count_number,
  "readTime": estimated_read_time_in_minutes
}`

// BuildPrompt composes the user prompt for the generation service. It is a
// pure function of form: identical input yields byte-identical output.
func BuildPrompt(form FormData) string {
	var b strings.Builder

	b.WriteString(promptIntro)
	b.WriteString("\n\nGIVEN INFORMATION:\n")
	for _, f := range promptFields {
		b.WriteString(f.label)
		b.WriteString(": ")
		if v := f.value(form); strings.TrimSpace(v) != "" {
			b.WriteString(v)
		} else {
			b.WriteString(f.synthesis)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(missingInfoInstructions)
	b.WriteString("\n\n")
	b.WriteString(spokenRegister)
	b.WriteString("\n\nAVOID These AI Cliche Words/Phrases:\n")
	for _, c := range ClicheDenylist {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(contentGuidelines)
	b.WriteString("\n\n")
	b.WriteString(closingDirective)
	b.WriteString("\n\n")
	b.WriteString(outputFormat)

	return b.String()
}

// MissingFields returns the labels of the fields BuildPrompt will ask the
// model to invent.
func MissingFields(form FormData) []string {
	var missing []string
	for _, f := range promptFields {
		if strings.TrimSpace(f.value(form)) == "" {
			missing = append(missing, f.label)
		}
	}
	return missing
}
