// Package charclass decodes one logical character at a time from a UTF-8
// byte buffer and reports what kind of character it is.
package charclass

import (
	"unicode"
	"unicode/utf8"
)

// Class is the category of a decoded character.
type Class int

const (
	// Other is any single byte that is not a letter, digit, line feed or
	// punctuation: whitespace, control bytes, invalid lead bytes.
	Other Class = iota
	Letter
	Digit
	Punct
	LineFeed
	CJK
	// MultiByte is a multi-byte sequence that is not a CJK ideograph,
	// including sequences cut short by the end of input.
	MultiByte
)

func (c Class) String() string {
	switch c {
	case Letter:
		return "letter"
	case Digit:
		return "digit"
	case Punct:
		return "punct"
	case LineFeed:
		return "line_feed"
	case CJK:
		return "cjk"
	case MultiByte:
		return "multi_byte"
	default:
		return "other"
	}
}

// Char is one decoded character.
type Char struct {
	Class Class
	// Width is the number of input bytes the character occupies.
	Width int
	// Rune is utf8.RuneError for malformed or truncated sequences.
	Rune rune
}

// Ideographs covers the CJK Unified Ideographs blocks, their extensions and
// the compatibility ideographs.
var Ideographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4dbf, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1},
		{Lo: 0xf900, Hi: 0xfaff, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2fa1f, Stride: 1},
		{Lo: 0x30000, Hi: 0x323af, Stride: 1},
	},
}

// SequenceLen returns the width a lead byte declares: 1 for ASCII, 2-4 for
// multi-byte lead bytes, and 1 for continuation or invalid bytes.
func SequenceLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 1
	}
}

// Decode classifies the character starting at buf[0]. A multi-byte sequence
// that runs past the end of buf is clamped to the bytes that remain. Decode
// must not be called with an empty buffer.
func Decode(buf []byte) Char {
	b := buf[0]
	width := SequenceLen(b)
	if width == 1 {
		return Char{Class: classifyByte(b), Width: 1, Rune: rune(b)}
	}
	if width > len(buf) {
		return Char{Class: MultiByte, Width: len(buf), Rune: utf8.RuneError}
	}
	r, size := utf8.DecodeRune(buf[:width])
	if r == utf8.RuneError || size != width {
		return Char{Class: MultiByte, Width: width, Rune: utf8.RuneError}
	}
	if IsIdeograph(r) {
		return Char{Class: CJK, Width: width, Rune: r}
	}
	return Char{Class: MultiByte, Width: width, Rune: r}
}

// IsIdeograph reports whether r is a CJK ideograph.
func IsIdeograph(r rune) bool {
	return unicode.Is(Ideographs, r)
}

// IsPunct reports whether b is printable ASCII punctuation.
func IsPunct(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') ||
		(b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

// IsLetter reports whether b is an ASCII letter.
func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ToLower folds an ASCII letter to lower case.
func ToLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func classifyByte(b byte) Class {
	switch {
	case IsLetter(b):
		return Letter
	case b >= '0' && b <= '9':
		return Digit
	case b == '\n':
		return LineFeed
	case IsPunct(b):
		return Punct
	default:
		return Other
	}
}
