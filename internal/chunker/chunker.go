// Package chunker splits raw user input into the texts of a batch.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"textvec/internal/domain"
)

// LineSplitter yields one text per non-empty line.
type LineSplitter struct{}

// NewLineSplitter creates a line splitter.
func NewLineSplitter() *LineSplitter { return &LineSplitter{} }

// Split returns the trimmed non-empty lines of text.
func (LineSplitter) Split(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// SentenceSplitter yields one text per sentence, merging short fragments
// into the following sentence.
type SentenceSplitter struct {
	minRunes int
	splitter *regexp.Regexp
}

// NewSentenceSplitter creates a sentence splitter. Sentences shorter than
// minRunes are joined with the next one.
func NewSentenceSplitter(minRunes int) *SentenceSplitter {
	if minRunes < 0 {
		minRunes = 0
	}
	return &SentenceSplitter{
		minRunes: minRunes,
		splitter: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Split breaks text on sentence terminators. Trailing text without a
// terminator becomes its own sentence.
func (s *SentenceSplitter) Split(text string) []string {
	locs := s.splitter.FindAllStringIndex(text, -1)
	var sentences []string
	end := 0
	for _, loc := range locs {
		sentences = append(sentences, text[loc[0]:loc[1]])
		end = loc[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}

	var out []string
	var pending string
	for _, sent := range sentences {
		sent = strings.Join(strings.Fields(sent), " ")
		if sent == "" {
			continue
		}
		if pending != "" {
			sent = pending + " " + sent
			pending = ""
		}
		if len([]rune(sent)) < s.minRunes {
			pending = sent
			continue
		}
		out = append(out, sent)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

// New returns the splitter for mode, "lines" or "sentences".
func New(mode string) (domain.Splitter, error) {
	switch mode {
	case "lines", "":
		return NewLineSplitter(), nil
	case "sentences":
		return NewSentenceSplitter(3), nil
	default:
		return nil, fmt.Errorf("unknown split mode %q (available: lines, sentences)", mode)
	}
}
