package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

func TestAnalyzeIntoWritesFixedOrderPayload(t *testing.T) {
	out := make([]byte, 8192)
	n, err := AnalyzeInto([]byte("# Title\nHello hello world.\n"), out)
	if err != nil {
		t.Fatalf("AnalyzeInto: %v", err)
	}
	got := string(out[:n])
	want := `{"total_chars":19,"en_words":3,"cn_chars":0,"words":3,"sensitive_count":0,` +
		`"redundancy_count":0,"punct_count":1,"section_count":2,"richness":0.82,"sections":[` +
		`{"section_id":0,"title":"Introduction","level":0,"length":0,"ratio":0.0000},` +
		`{"section_id":1,"title":"Title","level":1,"length":19,"ratio":1.0000}]}`
	if got != want {
		t.Errorf("payload mismatch\n got: %s\nwant: %s", got, want)
	}
	if !json.Valid(out[:n]) {
		t.Error("payload is not valid JSON")
	}
}

func TestAnalyzeIntoRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		out     []byte
		want    error
	}{
		{"nil content", nil, make([]byte, 512), apperrors.ErrInvalidInput},
		{"nil buffer", []byte("x"), nil, apperrors.ErrInvalidInput},
		{"small buffer", []byte("x"), make([]byte, MinBufferSize-1), apperrors.ErrInvalidInput},
		{"payload too large", []byte(strings.Repeat("# h\nx\n", 20)), make([]byte, MinBufferSize), apperrors.ErrSerializationOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeInto(tt.content, tt.out)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAnalyzeIntoEmptyContent(t *testing.T) {
	out := make([]byte, MinBufferSize*4)
	n, err := AnalyzeInto([]byte{}, out)
	if err != nil {
		t.Fatalf("AnalyzeInto: %v", err)
	}
	var payload struct {
		TotalChars   int `json:"total_chars"`
		SectionCount int `json:"section_count"`
		Sections     []struct {
			Title string `json:"title"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(out[:n], &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.TotalChars != 0 || payload.SectionCount != 1 || len(payload.Sections) != 1 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestEncodeSectionsStopsAtBudget(t *testing.T) {
	secs := make([]section.Section, 200)
	for i := range secs {
		secs[i] = section.Section{ID: i, Title: strings.Repeat("t", 40), Level: 1}
	}
	out := EncodeSections(secs, 4096)
	if len(out) > 4096 {
		t.Errorf("encoded %d bytes, budget 4096", len(out))
	}
	var decoded []map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("truncated array is not valid JSON: %v", err)
	}
	if len(decoded) == 0 || len(decoded) >= len(secs) {
		t.Errorf("decoded %d sections", len(decoded))
	}
}

func TestEncodeEscapesTitles(t *testing.T) {
	payload := Encode(analyzer.Stats{SectionCount: 1}, []section.Section{{Title: `say "hi"\`}})
	if !json.Valid(payload) {
		t.Fatalf("payload is not valid JSON: %s", payload)
	}
}
