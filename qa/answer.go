package qa

import "strings"

// Rule post-processes reconstructed answer text given the span tokens.
type Rule struct {
	Name  string
	Apply func(tokens []string, text string) string
}

// CollapseAtSign removes every space when the answer contains a bare "@"
// token, which re-joins e-mail like tokens split by the tokenizer.
var CollapseAtSign = Rule{
	Name: "collapse-at-sign",
	Apply: func(tokens []string, text string) string {
		for _, tok := range tokens {
			if tok == "@" {
				return strings.ReplaceAll(text, " ", "")
			}
		}
		return text
	},
}

// DefaultRules are applied by Reconstruct.
func DefaultRules() []Rule {
	return []Rule{CollapseAtSign}
}

// Reconstructor turns a token span back into display text.
type Reconstructor struct {
	Rules []Rule
}

// NewReconstructor returns a reconstructor applying rules in order.
func NewReconstructor(rules ...Rule) *Reconstructor {
	return &Reconstructor{Rules: rules}
}

// Text joins the span's tokens with spaces, merges "##" word pieces and
// trims. Invalid or out-of-range spans give "".
func (r *Reconstructor) Text(tokens []string, span Span) string {
	if !span.Valid() || span.End >= len(tokens) {
		return ""
	}
	return r.Join(tokens[span.Start : span.End+1])
}

// Join reconstructs text from an already sliced token list.
func (r *Reconstructor) Join(tokens []string) string {
	out := strings.Join(tokens, " ")
	out = strings.ReplaceAll(out, " ##", "")
	out = strings.TrimSpace(out)
	if r == nil {
		return out
	}
	for _, rule := range r.Rules {
		if rule.Apply != nil {
			out = rule.Apply(tokens, out)
		}
	}
	return out
}

// Reconstruct applies the default rules to a sliced token list.
func Reconstruct(tokens []string) string {
	return NewReconstructor(DefaultRules()...).Join(tokens)
}
