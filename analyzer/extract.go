package analyzer

import (
	"regexp"
	"strings"
)

// Extractor looks for one piece of information in a speech.
type Extractor func(text string) (string, bool)

// Chain is an ordered list of alternative extractors. The first one that
// matches wins.
type Chain []Extractor

func (c Chain) First(text string) (string, bool) {
	for _, extract := range c {
		if v, ok := extract(text); ok {
			return v, true
		}
	}
	return "", false
}

// Pattern returns an Extractor yielding capture group 1 of the leftmost
// match of expr whose cleaned value passes every accept func.
func Pattern(expr string, accept ...func(string) bool) Extractor {
	re := regexp.MustCompile(expr)
	return func(text string) (string, bool) {
	matches:
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			v := cleanCapture(m[1])
			if v == "" {
				continue
			}
			for _, ok := range accept {
				if !ok(v) {
					continue matches
				}
			}
			return v, true
		}
		return "", false
	}
}

func cleanCapture(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " ,;:-–—\"'’”")
}

const (
	apos       = `['’]`
	namePart   = `\p{Lu}(?:\p{Ll}+|` + apos + `\p{Lu}\p{Ll}+)(?:\p{Lu}\p{Ll}+)?`
	nameWord   = namePart + `(?:-` + namePart + `)?`
	fullName   = nameWord + `(?:\s+` + nameWord + `)?`
	nameEnd    = `(?:[^\p{L}-]|$)`
	selfIntro  = `(?i:\bmy name is|\bi` + apos + `m|\bi am)`
	// A role runs until one of these words or punctuation.
	clauseStop = `(?:\s+(?i:who|that|and|which|where|with|but|so)\b|[.!?,;]|$)`
	workStop   = `(?:\s+(?i:by|through|so|because)\b|[.!?]|$)`
	sentence   = `([^.!?]+)`
)

// notNameWords are capitalized words that follow "I'm" without being a name.
var notNameWords = map[string]bool{
	"so": true, "here": true, "just": true, "really": true, "not": true,
	"the": true, "also": true, "now": true, "excited": true, "glad": true,
	"happy": true, "proud": true, "thrilled": true, "honored": true,
	"grateful": true, "passionate": true, "currently": true, "still": true,
	"always": true, "very": true, "truly": true, "going": true,
	"honestly": true, "actually": true, "definitely": true,
	"and": true, "but": true, "or": true, "because": true, "who": true,
}

func plausibleName(v string) bool {
	first := strings.Fields(v)[0]
	return !notNameWords[strings.ToLower(first)]
}

// nameExtractor matches expr and drops a second word that is not part of
// the name, as in "I'm Sam And I run".
func nameExtractor(expr string) Extractor {
	match := Pattern(expr, plausibleName)
	return func(text string) (string, bool) {
		v, ok := match(text)
		if !ok {
			return "", false
		}
		if words := strings.Fields(v); len(words) == 2 && notNameWords[strings.ToLower(words[1])] {
			return words[0], true
		}
		return v, true
	}
}

// NameChain extracts the speaker's self-identified name.
var NameChain = Chain{
	nameExtractor(`(?i:\b(?:hello|hi|hey)\b)[^.!?]*?` + selfIntro + `\s+(` + fullName + `)` + nameEnd),
	nameExtractor(selfIntro + `\s+(` + fullName + `)` + nameEnd),
}

// RoleChain extracts the speaker's professional role.
var RoleChain = Chain{
	Pattern(`(?i)\bi(?:`+apos+`m| am)\s+an?\s+([^.!?,;]+?)`+clauseStop),
	Pattern(`(?i)\bi (?:work|serve) as\s+(?:an?\s+)?([^.!?,;]+?)`+clauseStop),
	Pattern(selfIntro+`\s+`+fullName+`,\s+(?i:an?)\s+([^.!?,;]+?)`+clauseStop),
}

// WorkChain extracts what the speaker does for others.
var WorkChain = Chain{
	Pattern(`(?i)\bi (?:help|assist|support|work with)\s+([^.!?]+?)` + workStop),
	Pattern(`(?i)\bi (?:focus on|specialize in)\s+([^.!?]+?)` + workStop),
	Pattern(`(?i)\bmy work (?:involves|is about)\s+([^.!?]+?)` + workStop),
	Pattern(`(?i)\bi (?:teach|guide|mentor|coach)\s+([^.!?]+?)` + workStop),
}

// MotivationChain extracts the speaker's reason for doing the work.
var MotivationChain = Chain{
	// belief
	Pattern(`(?i)\bi (?:truly |really |deeply |firmly )?believe(?: that)?\s+` + sentence),
	// causal
	Pattern(`(?i)\bthat` + apos + `s why\s+` + sentence),
	Pattern(`(?i)\bthe reason (?:i do this|this matters to me|i do what i do) is(?: that)?\s+` + sentence),
	Pattern(`(?i)\bbecause\s+` + sentence),
	// story callback
	Pattern(`(?i)\bthat (?:experience|moment|day)\s+` + sentence),
	// desire
	Pattern(`(?i)\bi want(?:ed)? to\s+` + sentence),
	// care and dedication
	Pattern(`(?i)\bi care (?:deeply |a lot |so much )?about\s+` + sentence),
	Pattern(`(?i)\bi(?:` + apos + `m| am) (?:dedicated|committed) to\s+` + sentence),
	Pattern(`(?i)\bwhat (?:drives|motivates) me is\s+` + sentence),
	// family and personal experience
	Pattern(`(?i)\b(my (?:mom|mother|dad|father|parents|grandmother|grandfather|grandma|grandpa|family|brother|sister|son|daughter|kids)\b[^.!?]*)`),
	Pattern(`(?i)\bwhen i was\s+` + sentence),
}
