package qa

import "math"

// Decoder picks the best span from start/end scores and an input mask.
type Decoder func(start, end []float32, mask []int) Span

// DecodeSpan searches every pair i <= j with both positions unmasked and
// returns the one maximizing start[i]+end[j]. The first maximum in row-major
// order wins ties. NaN and infinite scores never take part in a span.
func DecodeSpan(start, end []float32, mask []int) Span {
	n := scoreLen(start, end, mask)
	if degenerate(mask, n) {
		return NoAnswer
	}
	best := math.Inf(-1)
	span := NoAnswer
	for i := 0; i < n; i++ {
		if mask[i] != 1 || !usable(start[i]) {
			continue
		}
		for j := i; j < n; j++ {
			if mask[j] != 1 || !usable(end[j]) {
				continue
			}
			if sum := float64(start[i]) + float64(end[j]); sum > best {
				best = sum
				span = Span{Start: i, End: j}
			}
		}
	}
	return span
}

// DecodeSpanLinear returns the same span as DecodeSpan in a single pass by
// tracking the best start score seen so far.
func DecodeSpanLinear(start, end []float32, mask []int) Span {
	n := scoreLen(start, end, mask)
	if degenerate(mask, n) {
		return NoAnswer
	}
	best := math.Inf(-1)
	span := NoAnswer
	bestStart := -1
	for j := 0; j < n; j++ {
		if mask[j] != 1 {
			continue
		}
		if usable(start[j]) && (bestStart < 0 || start[j] > start[bestStart]) {
			bestStart = j
		}
		if bestStart < 0 || !usable(end[j]) {
			continue
		}
		sum := float64(start[bestStart]) + float64(end[j])
		if sum > best || (sum == best && bestStart < span.Start) {
			best = sum
			span = Span{Start: bestStart, End: j}
		}
	}
	return span
}

// SpanScore returns start[s.Start]+end[s.End], or -Inf for an invalid span.
func SpanScore(start, end []float32, s Span) float64 {
	if !s.Valid() || s.Start >= len(start) || s.End >= len(end) {
		return math.Inf(-1)
	}
	return float64(start[s.Start]) + float64(end[s.End])
}

// usable reports whether v is a finite score.
func usable(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func scoreLen(start, end []float32, mask []int) int {
	n := len(start)
	if len(end) < n {
		n = len(end)
	}
	if len(mask) < n {
		n = len(mask)
	}
	return n
}

// degenerate reports whether no position is valid or only the [CLS]
// position is.
func degenerate(mask []int, n int) bool {
	for i := 1; i < n; i++ {
		if mask[i] == 1 {
			return false
		}
	}
	return true
}
