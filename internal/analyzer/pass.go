package analyzer

import (
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/charclass"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
)

// pass holds the per-call scanning state: the Latin word being built and
// the run of consecutive CJK ideographs not yet classified.
type pass struct {
	s    *Session
	word []byte
	cjk  []rune
}

func (p *pass) run(text []byte) {
	s := p.s
	lineStart := true
	for i := 0; i < len(text); {
		if lineStart && text[i] == '#' {
			if h, ok := section.ParseHeading(text[i:], s.sections.MaxTitleLen()); ok {
				p.flush()
				s.sections.Open(h)
				i += h.Width
				continue
			}
		}

		c := charclass.Decode(text[i:])
		i += c.Width
		s.stats.TotalChars++
		s.sections.CountChar()
		lineStart = c.Class == charclass.LineFeed

		switch c.Class {
		case charclass.Letter:
			p.flushIdeographs()
			if len(p.word) < cap(p.word) {
				p.word = append(p.word, charclass.ToLower(text[i-1]))
			}
		case charclass.Digit:
			// Digits neither join nor end a word.
			p.flushIdeographs()
		case charclass.CJK:
			p.flushWord()
			p.cjk = append(p.cjk, c.Rune)
			s.stats.CnChars++
			s.sections.CountWord()
		case charclass.Punct, charclass.MultiByte:
			p.flush()
			s.stats.PunctCount++
		default:
			p.flush()
		}
	}
	p.flush()
}

func (p *pass) flush() {
	p.flushWord()
	p.flushIdeographs()
}

// flushWord commits the buffered Latin word, if any.
func (p *pass) flushWord() {
	if len(p.word) == 0 {
		return
	}
	word := string(p.word)
	p.word = p.word[:0]
	p.s.stats.EnWords++
	p.s.sections.CountWord()
	p.classify(word)
}

// flushIdeographs classifies the pending CJK run. Multi-character lookup
// terms are matched longest first; characters left over are classified one
// at a time.
func (p *pass) flushIdeographs() {
	if len(p.cjk) == 0 {
		return
	}
	for i := 0; i < len(p.cjk); {
		if n := p.matchPhrase(p.cjk[i:]); n > 0 {
			i += n
			continue
		}
		p.classify(string(p.cjk[i]))
		i++
	}
	p.cjk = p.cjk[:0]
}

// matchPhrase returns the rune length of the longest lookup term that
// prefixes run, or 0 when none does.
func (p *pass) matchPhrase(run []rune) int {
	s := p.s
	longest := s.maxPhraseRunes
	if longest > len(run) {
		longest = len(run)
	}
	for n := longest; n >= 2; n-- {
		key := string(run[:n])
		switch {
		case s.sensitiveSet.Contains(key):
			s.stats.SensitiveCount++
			s.sensitiveHits.Add(key)
			return n
		case s.redundantSet.Contains(key):
			s.stats.RedundancyCount++
			return n
		case s.stopSet.Contains(key):
			return n
		}
	}
	return 0
}

// classify files a committed word or ideograph under sensitive, redundant,
// stop or counted, in that order of precedence.
func (p *pass) classify(key string) {
	s := p.s
	switch {
	case s.sensitiveSet.Contains(key):
		s.stats.SensitiveCount++
		s.sensitiveHits.Add(key)
	case s.redundantSet.Contains(key):
		s.stats.RedundancyCount++
	case !s.stopSet.Contains(key):
		s.freq.Add(key)
	}
}
