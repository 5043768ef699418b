package charclass

import (
	"testing"
	"unicode/utf8"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		class Class
		width int
	}{
		{"upper letter", "A", Letter, 1},
		{"lower letter", "z", Letter, 1},
		{"digit", "7", Digit, 1},
		{"line feed", "\n", LineFeed, 1},
		{"period", ".", Punct, 1},
		{"tilde", "~", Punct, 1},
		{"space", " ", Other, 1},
		{"tab", "\t", Other, 1},
		{"nul", "\x00", Other, 1},
		{"ideograph", "中", CJK, 3},
		{"extension b ideograph", "\U00020000", CJK, 4},
		{"accented latin", "é", MultiByte, 2},
		{"cjk punctuation", "。", MultiByte, 3},
		{"emoji", "😀", MultiByte, 4},
		{"stray continuation", "\x80", Other, 1},
		{"invalid lead", "\xff", Other, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Decode([]byte(tt.in))
			if c.Class != tt.class {
				t.Errorf("class = %v, want %v", c.Class, tt.class)
			}
			if c.Width != tt.width {
				t.Errorf("width = %d, want %d", c.Width, tt.width)
			}
		})
	}
}

func TestDecodeTruncatedSequenceStaysInBounds(t *testing.T) {
	full := []byte("中")
	c := Decode(full[:2])
	if c.Width != 2 {
		t.Errorf("width = %d, want 2", c.Width)
	}
	if c.Class != MultiByte {
		t.Errorf("class = %v, want %v", c.Class, MultiByte)
	}
	if c.Rune != utf8.RuneError {
		t.Errorf("rune = %q, want RuneError", c.Rune)
	}
}

func TestDecodeMalformedContinuation(t *testing.T) {
	// A three-byte lead followed by ASCII consumes its declared width.
	c := Decode([]byte("\xe4ab"))
	if c.Width != 3 || c.Class != MultiByte {
		t.Errorf("got width %d class %v, want 3 %v", c.Width, c.Class, MultiByte)
	}
}

func TestSequenceLen(t *testing.T) {
	tests := map[byte]int{
		'a':  1,
		0xc3: 2,
		0xe4: 3,
		0xf0: 4,
		0x80: 1,
		0xf8: 1,
	}
	for b, want := range tests {
		if got := SequenceLen(b); got != want {
			t.Errorf("SequenceLen(%#x) = %d, want %d", b, got, want)
		}
	}
}

func TestToLower(t *testing.T) {
	if ToLower('Q') != 'q' || ToLower('q') != 'q' || ToLower('1') != '1' {
		t.Error("ToLower folded incorrectly")
	}
}
