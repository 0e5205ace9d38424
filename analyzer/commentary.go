package analyzer

import (
	"fmt"
	"strings"
)

// Thresholds that trigger enhancement suggestions.
const (
	MaxSentences = 15
	MaxWords     = 320
	MinWords     = 200
)

const overview = "This speech demonstrates how the Who-What-Why framework creates connection and credibility through structured personal storytelling."

// Suggestion texts, in the order they are emitted.
const (
	SuggestShorterSentences = "Consider shorter sentences for easier spoken delivery."
	SuggestTransitions      = `Add smooth transitions between framework sections: "What I do is..." followed by "The reason this matters to me is..."`
	SuggestTrim             = "Trim to under 300 words while preserving all three framework elements."
	SuggestExpand           = "Expand with more examples so each framework element gets room to breathe; aim for about 300 words."
	SuggestAudience         = `Include direct audience connection with "you" language to strengthen engagement.`
	SuggestExample          = `Add a brief success story like "Recently, I helped a client achieve their first profitable quarter."`
	SuggestInvitation       = `Close with a conversation starter like "What brings you to this event tonight?"`
)

type Commentary struct {
	Overview    string   `json:"overview"`
	Who         string   `json:"who"`
	What        string   `json:"what"`
	Why         string   `json:"why"`
	Suggestions []string `json:"suggestions"`
}

// String renders the commentary as plain paragraphs.
func (c Commentary) String() string {
	var b strings.Builder
	b.WriteString(c.Overview)
	b.WriteString("\n\nWHO Framework Component: ")
	b.WriteString(c.Who)
	b.WriteString("\n\nWHAT Framework Component: ")
	b.WriteString(c.What)
	b.WriteString("\n\nWHY Framework Component: ")
	b.WriteString(c.Why)
	b.WriteString("\n\nFramework Enhancement Suggestions: ")
	if len(c.Suggestions) == 0 {
		b.WriteString("The delivery already hits every framework check. Rehearse it out loud once before presenting.")
	} else {
		b.WriteString(strings.Join(c.Suggestions, " "))
	}
	return b.String()
}

func renderCommentary(f Findings) Commentary {
	return Commentary{
		Overview:    overview,
		Who:         whoSection(f),
		What:        whatSection(f),
		Why:         whySection(f),
		Suggestions: suggestions(f),
	}
}

func whoSection(f Findings) string {
	var b strings.Builder
	if f.SpeakerName != nil {
		fmt.Fprintf(&b, "%s establishes personal identity immediately, creating trust and memorability.", *f.SpeakerName)
	} else {
		b.WriteString("The speech opens without personal identification, missing an opportunity to build immediate connection.")
	}
	if f.Role != nil {
		fmt.Fprintf(&b, ` The professional identity as %s provides context and credibility, completing the "who am I" foundation.`, *f.Role)
	} else {
		b.WriteString(" Adding a clear professional role would strengthen audience understanding of expertise and background.")
	}
	if f.SpeakerName != nil && f.Role != nil {
		b.WriteString(" This strong WHO foundation sets up the framework effectively.")
	}
	return b.String()
}

func whatSection(f Findings) string {
	if f.WorkDescription != nil {
		return fmt.Sprintf(`The speech clearly explains the value provided: "%s." This addresses the critical "what do I do" question with specific, audience-focused language.`+
			" By focusing on helping others rather than job titles, the speech keeps the audience at the center.", *f.WorkDescription)
	}
	return "The WHAT section needs development - listeners need to understand specific services, skills, or value provided." +
		` Consider adding concrete examples like "I help restaurant owners reduce food waste by 30%" or "I teach public speaking skills to overcome presentation anxiety."`
}

func whySection(f Findings) string {
	if f.Motivation != nil {
		return fmt.Sprintf(`The emotional driver comes through clearly: "%s." This personal motivation completes the framework by revealing what truly matters beyond professional obligations.`, *f.Motivation)
	}
	return "The WHY element - the emotional core that makes speeches memorable - is absent from this version." +
		` Adding genuine motivation like "I started this work after my own experience with workplace stress" would complete the framework.`
}

func suggestions(f Findings) []string {
	var out []string
	if f.SentenceCount > MaxSentences {
		out = append(out, SuggestShorterSentences)
	}
	if !f.HasTransitions {
		out = append(out, SuggestTransitions)
	}
	switch {
	case f.WordCount > MaxWords:
		out = append(out, SuggestTrim)
	case f.WordCount < MinWords:
		out = append(out, SuggestExpand)
	}
	if !f.AddressesAudience {
		out = append(out, SuggestAudience)
	}
	if !f.HasConcreteExample {
		out = append(out, SuggestExample)
	}
	if !f.HasClosingInvitation {
		out = append(out, SuggestInvitation)
	}
	return out
}
