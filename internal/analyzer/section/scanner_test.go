package section

import (
	"math"
	"strings"
	"testing"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		ok    bool
		level int
		title string
		width int
	}{
		{"level one", "# Title\nbody", true, 1, "Title", 8},
		{"level three", "### Deep\n", true, 3, "Deep", 9},
		{"at end of input", "## Tail", true, 2, "Tail", 7},
		{"carriage return", "# Win\r\n", true, 1, "Win", 7},
		{"empty title", "# \n", true, 1, "", 3},
		{"no separator", "#Title\n", false, 0, "", 0},
		{"seven markers", "####### Title\n", false, 0, "", 0},
		{"marker only", "#", false, 0, "", 0},
		{"not a marker", "Title\n", false, 0, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := ParseHeading([]byte(tt.in), DefaultMaxTitleLen)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if h.Level != tt.level || h.Title != tt.title || h.Width != tt.width {
				t.Errorf("got %+v, want level=%d title=%q width=%d", h, tt.level, tt.title, tt.width)
			}
		})
	}
}

func TestParseHeadingTruncatesTitleOnRuneBoundary(t *testing.T) {
	title := strings.Repeat("中", 10) // 30 bytes
	h, ok := ParseHeading([]byte("# "+title+"\n"), 9)
	if !ok {
		t.Fatal("heading not recognised")
	}
	if h.Title != "中中" {
		t.Errorf("title = %q, want %q", h.Title, "中中")
	}
	if h.Width != 2+len(title)+1 {
		t.Errorf("width = %d, want whole line", h.Width)
	}
}

func TestScannerLengthsAndRatios(t *testing.T) {
	s := NewScanner()
	for i := 0; i < 10; i++ {
		s.CountChar()
	}
	s.Open(Heading{Level: 1, Title: "One"})
	for i := 0; i < 30; i++ {
		s.CountChar()
	}
	s.Finish()

	secs := s.Sections(10)
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2", len(secs))
	}
	if secs[0].Title != DefaultTitle || secs[0].Level != 0 || secs[0].Length != 10 {
		t.Errorf("implicit section = %+v", secs[0])
	}
	if secs[1].ID != 1 || secs[1].Title != "One" || secs[1].Length != 30 {
		t.Errorf("second section = %+v", secs[1])
	}
	sum := secs[0].Ratio + secs[1].Ratio
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("ratios sum to %f, want 1", sum)
	}
}

func TestScannerZeroLengthKeepsZeroRatios(t *testing.T) {
	s := NewScanner()
	s.Open(Heading{Level: 2, Title: "Empty"})
	s.Finish()
	for _, sec := range s.Sections(5) {
		if sec.Ratio != 0 {
			t.Errorf("section %d ratio = %f, want 0", sec.ID, sec.Ratio)
		}
	}
}

func TestScannerCapFoldsIntoLastSection(t *testing.T) {
	s := NewScanner(WithMaxSections(3))
	for i := 0; i < 6; i++ {
		opened := s.Open(Heading{Level: 1, Title: "H"})
		if want := i < 2; opened != want {
			t.Errorf("heading %d opened = %v, want %v", i, opened, want)
		}
		for j := 0; j < 5; j++ {
			s.CountChar()
		}
	}
	s.Finish()
	if s.Count() != 3 {
		t.Fatalf("Count = %d, want 3", s.Count())
	}
	secs := s.Sections(3)
	if secs[2].Length != 25 {
		t.Errorf("last section length = %d, want 25", secs[2].Length)
	}
	total := 0
	for _, sec := range secs {
		total += sec.Length
	}
	if total != 30 {
		t.Errorf("total length = %d, want 30", total)
	}
}

func TestSectionsTruncatesToMax(t *testing.T) {
	s := NewScanner()
	s.Open(Heading{Level: 1, Title: "A"})
	s.Open(Heading{Level: 1, Title: "B"})
	s.Finish()
	if got := len(s.Sections(2)); got != 2 {
		t.Errorf("Sections(2) returned %d", got)
	}
	if got := s.Sections(0); got != nil {
		t.Errorf("Sections(0) = %v", got)
	}
}
