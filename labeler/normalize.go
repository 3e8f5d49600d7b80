package labeler

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeReport prepares raw report text for sentence splitting. CRLF and
// lone CR line endings become "\n" and compatibility forms are folded with
// NFKC. Control and format characters such as soft hyphens are removed so
// they cannot split a phrase. Each line loses its trailing whitespace and the
// whole text is trimmed.
func NormalizeReport(text string) string {
	text = norm.NFKC.String(lineEndings.Replace(text))
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
