package analyzer

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	transitionRe   = regexp.MustCompile(`(?i)\b(?:now|so|and|but|however|therefore|here['’]s the thing|what['’]s more|additionally|also|then|first|finally|that['’]s why)\b`)
	secondPersonRe = regexp.MustCompile(`(?i)\byou(?:r|rs|rself|rselves)?\b`)
	concreteRe     = regexp.MustCompile(`(?i)[0-9%]|\b(?:for example|for instance|recently|last (?:year|month|week)|one time)\b`)
	invitationRe   = regexp.MustCompile(`(?i)\b(?:let['’]s (?:talk|connect|chat)|reach out|come (?:say hi|find me|talk to me)|find me|connect with me|i['’]d love to (?:hear|chat|talk|connect)|feel free to)\b`)
)

// Normalize collapses runs of whitespace into single spaces and trims.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Sentences splits text on sentence-ending punctuation and drops empty
// fragments.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceEndRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func HasTransitions(text string) bool {
	return transitionRe.MatchString(text)
}

func AddressesAudience(text string) bool {
	return secondPersonRe.MatchString(text)
}

func HasConcreteExample(text string) bool {
	return concreteRe.MatchString(text)
}

// HasClosingInvitation reports whether the speech ends by inviting the
// audience to talk: a closing question or an invitation phrase in the last
// sentence.
func HasClosingInvitation(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	trimmed := strings.TrimRight(text, `"'”’) `)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return false
	}
	return invitationRe.MatchString(sentences[len(sentences)-1])
}
