// Package ssplit splits clinical report text into sentences.
package ssplit

import (
	"strings"
	"unicode"
)

// Splitter segments a document into ordered sentences.
type Splitter interface {
	Split(text string) []string
}

// RuleSplitter breaks on newlines and on sentence-final punctuation followed
// by whitespace.
type RuleSplitter struct{}

// New returns the default splitter.
func New() RuleSplitter {
	return RuleSplitter{}
}

// Split returns the trimmed, non-empty sentences of text in order.
func (RuleSplitter) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, splitLine(line)...)
	}
	return out
}

func splitLine(line string) []string {
	var out []string
	runes := []rune(line)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = appendSentence(out, string(runes[start:i+1]))
		start = i + 1
	}
	return appendSentence(out, string(runes[start:]))
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}
