package labeler

import (
	"sort"
	"strings"
	"unicode"
)

// Labeler turns report sentences into observation flags. It is immutable and
// safe for concurrent use.
type Labeler struct {
	dict    *Dictionary
	phrases map[Category][]string
}

// NewLabeler compiles the lower-cased phrase lists of dict. Empty phrases are
// dropped since they would match every sentence.
func NewLabeler(dict *Dictionary) *Labeler {
	if dict == nil {
		dict = NewDictionary(nil)
	}
	compiled := make(map[Category][]string, len(categories))
	for _, c := range categories {
		compiled[c] = compilePhrases(dict.Phrases(c))
	}
	return &Labeler{dict: dict, phrases: compiled}
}

// Dictionary returns the source dictionary.
func (l *Labeler) Dictionary() *Dictionary {
	return l.dict
}

// Label flags every category that an eligible sentence mentions. Flags only
// ever go from false to true.
func (l *Labeler) Label(sentences []string) ObservationMap {
	obs := newObservationMap()
	for _, s := range sentences {
		s = strings.ToLower(s)
		if IsNegated(s) {
			continue
		}
		for _, c := range categories {
			if obs[c] {
				continue
			}
			for _, phrase := range l.phrases[c] {
				if strings.Contains(s, phrase) {
					obs[c] = true
					break
				}
			}
		}
	}
	return obs
}

// Evidence runs the same pass as Label and records every phrase hit and
// every skipped sentence.
func (l *Labeler) Evidence(sentences []string) Evidence {
	ev := Evidence{
		Observations: newObservationMap(),
		Hits:         make(map[Category][]Hit),
		Negated:      make(map[int]string),
	}
	for i, s := range sentences {
		s = strings.ToLower(s)
		if cue, ok := MatchNegation(s); ok {
			ev.Negated[i] = cue
			continue
		}
		for _, c := range categories {
			for _, phrase := range l.phrases[c] {
				if strings.Contains(s, phrase) {
					ev.Observations[c] = true
					ev.Hits[c] = append(ev.Hits[c], Hit{Sentence: i, Phrase: phrase})
				}
			}
		}
	}
	return ev
}

// Mentions locates the trigger phrases of every present category in report,
// ignoring case. Occurrences of one phrase never overlap each other. Offsets
// are byte offsets into report even when lower-casing changes rune widths.
func (l *Labeler) Mentions(report string, obs ObservationMap) []Mention {
	lower, origin := lowerWithOffsets(report)
	var out []Mention
	for _, c := range obs.Present() {
		for _, phrase := range l.phrases[c] {
			start := 0
			for start < len(lower) {
				idx := strings.Index(lower[start:], phrase)
				if idx < 0 {
					break
				}
				idx += start
				end := idx + len(phrase)
				from, to := origin[idx], origin[end]
				out = append(out, Mention{Category: c, Phrase: report[from:to], Start: from, End: to})
				start = end
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start == out[j].Start {
			return out[i].End > out[j].End
		}
		return out[i].Start < out[j].Start
	})
	return out
}

func compilePhrases(words []string) []string {
	res := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == "" {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		res = append(res, lower)
	}
	return res
}

// lowerWithOffsets lower-cases s rune by rune like strings.ToLower. origin
// maps each byte of the result, plus its end, to the offset of the source
// rune it came from.
func lowerWithOffsets(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	origin := make([]int, 0, len(s)+1)
	for i, r := range s {
		n := b.Len()
		b.WriteRune(unicode.ToLower(r))
		for k := n; k < b.Len(); k++ {
			origin = append(origin, i)
		}
	}
	return b.String(), append(origin, len(s))
}
