// Package analyzer produces Who-What-Why commentary for a generated speech.
//
// Extraction is heuristic: each piece of information (speaker name, role,
// work description, motivation) is looked up with an ordered [Chain] of
// regular-expression extractors and the first match wins. Structural
// metrics are computed on whitespace-normalized text. Analysis is a pure
// function of its input.
package analyzer

type Findings struct {
	SpeakerName     *string `json:"speakerName"`
	Role            *string `json:"role"`
	WorkDescription *string `json:"workDescription"`
	Motivation      *string `json:"motivation"`

	SentenceCount        int  `json:"sentenceCount"`
	WordCount            int  `json:"wordCount"`
	HasTransitions       bool `json:"hasTransitions"`
	AddressesAudience    bool `json:"addressesAudience"`
	HasConcreteExample   bool `json:"hasConcreteExample"`
	HasClosingInvitation bool `json:"hasClosingInvitation"`
}

type Report struct {
	Findings   Findings   `json:"findings"`
	Commentary Commentary `json:"commentary"`
}

// Analyze extracts findings from speech and renders the commentary.
func Analyze(speech string) Report {
	f := Extract(speech)
	return Report{Findings: f, Commentary: renderCommentary(f)}
}

// Extract computes the findings for speech without rendering commentary.
func Extract(speech string) Findings {
	clean := Normalize(speech)
	return Findings{
		SpeakerName:          find(NameChain, clean),
		Role:                 find(RoleChain, clean),
		WorkDescription:      find(WorkChain, clean),
		Motivation:           find(MotivationChain, clean),
		SentenceCount:        len(Sentences(clean)),
		WordCount:            WordCount(clean),
		HasTransitions:       HasTransitions(clean),
		AddressesAudience:    AddressesAudience(clean),
		HasConcreteExample:   HasConcreteExample(clean),
		HasClosingInvitation: HasClosingInvitation(clean),
	}
}

func find(c Chain, text string) *string {
	v, ok := c.First(text)
	if !ok {
		return nil
	}
	return &v
}
