package labeler

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// slashAlternative matches a slash used as a word-level "or" between letters.
var slashAlternative = regexp2.MustCompile(`(?<=[a-zA-Z])/(?=[a-zA-Z])`, regexp2.None)

var punctuationSpacer = strings.NewReplacer(".", ". ", ",", ", ")

// Clean normalizes a sentence before matching: lower-case, "and/or" and
// letter/letter become "or", ".." collapses to ".", periods and commas get a
// trailing space and whitespace runs collapse.
func Clean(sentence string) string {
	s := strings.ToLower(sentence)
	s = strings.ReplaceAll(s, "and/or", "or")
	if replaced, err := slashAlternative.Replace(s, " or ", -1, -1); err == nil {
		s = replaced
	}
	s = strings.ReplaceAll(s, "..", ".")
	s = punctuationSpacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanAll applies Clean to every sentence.
func CleanAll(sentences []string) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = Clean(s)
	}
	return out
}
