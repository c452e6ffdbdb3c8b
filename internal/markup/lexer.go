// Package markup splits question, option and answer text into plain text, inline
// LaTeX (<math>...</math>) and code (<code>...</code>) segments.
package markup

import "strings"

type Kind int

const (
	PlainText Kind = iota
	MathExpression
	CodeBlock
)

func (k Kind) String() string {
	switch k {
	case MathExpression:
		return "math"
	case CodeBlock:
		return "code"
	default:
		return "text"
	}
}

type Segment struct {
	Kind Kind
	Text string
}

type tag struct {
	kind  Kind
	open  string
	close string
}

var tags = []tag{
	{kind: MathExpression, open: "<math>", close: "</math>"},
	{kind: CodeBlock, open: "<code>", close: "</code>"},
}

// stateFn scans from the current position and returns the next state, nil at end of input.
type stateFn func(*scanner) stateFn

type scanner struct {
	input    string
	pos      int
	start    int
	open     tag
	segments []Segment
}

// Split never fails: unmatched or unterminated tags are kept as plain text, and
// content between an opening tag and its matching closing tag is taken literally.
func Split(input string) []Segment {
	s := &scanner{input: input}
	for state := scanText; state != nil; {
		state = state(s)
	}
	if len(s.segments) == 0 {
		return []Segment{{Kind: PlainText, Text: input}}
	}
	return s.segments
}

func scanText(s *scanner) stateFn {
	for s.pos < len(s.input) {
		if s.input[s.pos] == '<' {
			for _, candidate := range tags {
				if strings.HasPrefix(s.input[s.pos:], candidate.open) {
					s.emitText(s.input[s.start:s.pos])
					s.open = candidate
					s.start = s.pos
					s.pos += len(candidate.open)
					return scanTagged
				}
			}
		}
		s.pos++
	}
	s.emitText(s.input[s.start:])
	return nil
}

func scanTagged(s *scanner) stateFn {
	end := strings.Index(s.input[s.pos:], s.open.close)
	if end < 0 {
		// Unterminated: the opening tag and everything after it is plain text.
		s.emitText(s.input[s.start:])
		s.pos = len(s.input)
		return nil
	}

	content := s.input[s.pos : s.pos+end]
	s.segments = append(s.segments, Segment{Kind: s.open.kind, Text: content})
	s.pos += end + len(s.open.close)
	s.start = s.pos
	return scanText
}

// emitText merges with a preceding plain segment so text runs stay contiguous.
func (s *scanner) emitText(text string) {
	if text == "" {
		return
	}
	if n := len(s.segments); n > 0 && s.segments[n-1].Kind == PlainText {
		s.segments[n-1].Text += text
		return
	}
	s.segments = append(s.segments, Segment{Kind: PlainText, Text: text})
}
