// Package section splits a document into heading-delimited sections and
// tracks how many content characters each one holds.
package section

import (
	"bytes"
	"unicode/utf8"
)

const (
	// DefaultMaxSections is the default cap on open sections, the implicit
	// leading section included.
	DefaultMaxSections = 100
	// DefaultMaxTitleLen bounds titles to DefaultMaxTitleLen-1 bytes.
	DefaultMaxTitleLen = 128
	// DefaultTitle names the implicit section that precedes any heading.
	DefaultTitle = "Introduction"

	// MaxLevel is the deepest heading level recognised.
	MaxLevel = 6

	marker    = '#'
	separator = ' '
)

// Section is one structural region of a document.
type Section struct {
	ID     int     `json:"section_id"`
	Title  string  `json:"title"`
	Level  int     `json:"level"`
	Length int     `json:"length"`
	Ratio  float64 `json:"ratio"`
	Words  int     `json:"words"`
}

// Heading is a parsed heading line.
type Heading struct {
	Level int
	Title string
	// Width is the number of bytes consumed, trailing line feed included.
	Width int
}

// ParseHeading checks whether buf starts with a heading line: one to six
// '#' markers followed by a space. When it does not, ok is false and the
// caller treats the bytes as ordinary content.
func ParseHeading(buf []byte, maxTitleLen int) (h Heading, ok bool) {
	level := 0
	for level < len(buf) && level < MaxLevel && buf[level] == marker {
		level++
	}
	if level == 0 || level >= len(buf) || buf[level] != separator {
		return Heading{}, false
	}
	rest := buf[level+1:]
	lineLen := bytes.IndexByte(rest, '\n')
	width := level + 1
	if lineLen < 0 {
		lineLen = len(rest)
		width += lineLen
	} else {
		width += lineLen + 1
	}
	title := bytes.TrimSuffix(rest[:lineLen], []byte{'\r'})
	return Heading{
		Level: level,
		Title: truncateTitle(title, maxTitleLen-1),
		Width: width,
	}, true
}

// Scanner accumulates section boundaries and lengths during one pass.
type Scanner struct {
	sections    []Section
	maxSections int
	maxTitleLen int
	charCount   int
	finished    bool
}

// Option customises a Scanner.
type Option func(*Scanner)

// WithMaxSections caps the number of sections. Headings beyond the cap fold
// their content into the last open section.
func WithMaxSections(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxSections = n
		}
	}
}

// WithMaxTitleLen bounds stored titles to n-1 bytes.
func WithMaxTitleLen(n int) Option {
	return func(s *Scanner) {
		if n > 1 {
			s.maxTitleLen = n
		}
	}
}

// NewScanner creates a scanner with the implicit leading section open.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxSections: DefaultMaxSections,
		maxTitleLen: DefaultMaxTitleLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sections = append(s.sections, Section{ID: 0, Title: DefaultTitle, Level: 0})
	return s
}

// MaxTitleLen returns the title bound used by ParseHeading.
func (s *Scanner) MaxTitleLen() int {
	return s.maxTitleLen
}

// Open closes the current section and opens a new one for h. At the cap
// the heading is absorbed: the last section keeps its title, level and
// running length. Open reports whether a new section was started.
func (s *Scanner) Open(h Heading) bool {
	if len(s.sections) >= s.maxSections {
		return false
	}
	s.current().Length = s.charCount
	s.charCount = 0
	s.sections = append(s.sections, Section{
		ID:    len(s.sections),
		Title: h.Title,
		Level: h.Level,
	})
	return true
}

// CountChar records one content character in the open section.
func (s *Scanner) CountChar() {
	s.charCount++
}

// CountWord records one committed word or ideograph in the open section.
func (s *Scanner) CountWord() {
	s.current().Words++
}

// Finish closes the last section and computes every section's share of
// the total length. Finish is idempotent.
func (s *Scanner) Finish() {
	if s.finished {
		return
	}
	s.finished = true
	s.current().Length = s.charCount

	total := 0
	for _, sec := range s.sections {
		total += sec.Length
	}
	if total == 0 {
		return
	}
	for i := range s.sections {
		s.sections[i].Ratio = float64(s.sections[i].Length) / float64(total)
	}
}

// Count returns the number of sections, the implicit one included.
func (s *Scanner) Count() int {
	return len(s.sections)
}

// Sections returns a copy of at most max sections in document order.
func (s *Scanner) Sections(max int) []Section {
	if max <= 0 {
		return nil
	}
	if max > len(s.sections) {
		max = len(s.sections)
	}
	out := make([]Section, max)
	copy(out, s.sections[:max])
	return out
}

func (s *Scanner) current() *Section {
	return &s.sections[len(s.sections)-1]
}

// truncateTitle cuts title to at most limit bytes without splitting a
// UTF-8 sequence.
func truncateTitle(title []byte, limit int) string {
	if len(title) <= limit {
		return string(title)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return string(title[:cut])
}
