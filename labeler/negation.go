package labeler

import "strings"

// NegationCues are checked in order as plain substrings. Matching is not
// word-boundary aware: "n't" and "no" fire inside unrelated words too.
var negationCues = []string{"no", "not", "doesn't", "does not", "have not", "can not", "can't", "n't"}

// NegationCues returns the ordered negation cue list.
func NegationCues() []string {
	return cloneStrings(negationCues)
}

// MatchNegation returns the first cue contained in sentence, ignoring case.
func MatchNegation(sentence string) (string, bool) {
	lower := strings.ToLower(sentence)
	for _, cue := range negationCues {
		if strings.Contains(lower, cue) {
			return cue, true
		}
	}
	return "", false
}

// IsNegated reports whether sentence carries any negation cue. Negated
// sentences contribute no positive evidence.
func IsNegated(sentence string) bool {
	_, ok := MatchNegation(sentence)
	return ok
}
