package importer

import "strings"

// DefaultMaxHeaderWords is the word count at or below which a line is
// treated as the start of a new topic.
const DefaultMaxHeaderWords = 5

// HeaderPolicy reports whether a line introduces a new topic.
type HeaderPolicy func(line string) bool

// MaxWordsPolicy classifies lines with at most n words as headers.
func MaxWordsPolicy(n int) HeaderPolicy {
	return func(line string) bool {
		return WordCount(line) <= n
	}
}

// WordCount counts runs of characters other than ' '. Only the space
// character separates words; tabs are part of a word.
func WordCount(line string) int {
	count := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			continue
		}
		if i == 0 || line[i-1] == ' ' {
			count++
		}
	}
	return count
}

// Section is a finished (name, description) pair produced by the Segmenter.
type Section struct {
	Name        string
	Description string
}

// Segmenter splits a stream of lines into sections. A zero Segmenter uses
// MaxWordsPolicy(DefaultMaxHeaderWords).
type Segmenter struct {
	isHeader HeaderPolicy
	header   string
	body     strings.Builder
}

func NewSegmenter(policy HeaderPolicy) *Segmenter {
	return &Segmenter{isHeader: policy}
}

// Classify feeds one line. When the line is a header and another header is
// already pending, the pending section is returned with ok set, even when
// its body is empty.
func (s *Segmenter) Classify(line string) (sec Section, ok bool) {
	if s.isHeader == nil {
		s.isHeader = MaxWordsPolicy(DefaultMaxHeaderWords)
	}
	if !s.isHeader(line) {
		s.body.WriteString(line)
		return Section{}, false
	}

	if s.header != "" {
		sec, ok = s.pending(), true
	}
	s.header = line
	s.body.Reset()
	return sec, ok
}

// Flush returns the pending section at end of input. Unlike Classify it
// requires a non-empty body, so a trailing header on its own is dropped.
func (s *Segmenter) Flush() (Section, bool) {
	if s.header == "" || s.body.Len() == 0 {
		return Section{}, false
	}
	sec := s.pending()
	s.header = ""
	s.body.Reset()
	return sec, true
}

func (s *Segmenter) pending() Section {
	return Section{
		Name:        strings.TrimSpace(s.header),
		Description: s.body.String(),
	}
}
