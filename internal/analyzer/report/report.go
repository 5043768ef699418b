// Package report runs a complete analysis of raw text and writes the result
// into a caller-supplied buffer as a JSON payload with a fixed field order.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

const (
	// MinBufferSize is the smallest output buffer AnalyzeInto accepts.
	MinBufferSize = 128
	// sectionsBudget bounds the encoded section array.
	sectionsBudget = 4096
)

// AnalyzeInto analyzes content with default options and no lookup
// vocabularies, then writes the payload into out. It returns the number of
// bytes written.
func AnalyzeInto(content []byte, out []byte) (int, error) {
	if content == nil {
		return 0, apperrors.New(apperrors.ErrInvalidInput, 400, "content is nil")
	}
	if out == nil || len(out) < MinBufferSize {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, 400, "output buffer must hold at least %d bytes", MinBufferSize)
	}

	sess := analyzer.NewSession(analyzer.DefaultOptions())
	defer sess.Close()
	if err := sess.Process(content); err != nil {
		return 0, fmt.Errorf("processing content: %w", err)
	}
	stats := sess.Stats()
	payload := Encode(stats, sess.Sections(stats.SectionCount))
	if len(payload) > len(out) {
		return 0, apperrors.Newf(apperrors.ErrSerializationOverflow, 413, "payload needs %d bytes, buffer holds %d", len(payload), len(out))
	}
	return copy(out, payload), nil
}

// Encode renders stats and sections as the fixed-order payload. Sections
// that would push the section array past its budget are left out.
func Encode(stats analyzer.Stats, sections []section.Section) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"total_chars":`)
	buf.WriteString(strconv.Itoa(stats.TotalChars))
	writeInt(&buf, "en_words", stats.EnWords)
	writeInt(&buf, "cn_chars", stats.CnChars)
	writeInt(&buf, "words", stats.Words())
	writeInt(&buf, "sensitive_count", stats.SensitiveCount)
	writeInt(&buf, "redundancy_count", stats.RedundancyCount)
	writeInt(&buf, "punct_count", stats.PunctCount)
	writeInt(&buf, "section_count", stats.SectionCount)
	buf.WriteString(`,"richness":`)
	buf.WriteString(strconv.FormatFloat(stats.Richness, 'f', 2, 64))
	buf.WriteString(`,"sections":`)
	buf.Write(EncodeSections(sections, sectionsBudget))
	buf.WriteByte('}')
	return buf.Bytes()
}

// EncodeSections renders sections as a JSON array no longer than budget
// bytes, stopping before the first section that does not fit.
func EncodeSections(sections []section.Section, budget int) []byte {
	out := make([]byte, 0, 256)
	out = append(out, '[')
	for i, sec := range sections {
		item := encodeSection(sec, i > 0)
		// one byte reserved for the closing bracket
		if len(out)+len(item)+1 > budget {
			break
		}
		out = append(out, item...)
	}
	return append(out, ']')
}

func encodeSection(sec section.Section, comma bool) []byte {
	title, _ := json.Marshal(sec.Title)
	var buf bytes.Buffer
	if comma {
		buf.WriteByte(',')
	}
	buf.WriteString(`{"section_id":`)
	buf.WriteString(strconv.Itoa(sec.ID))
	buf.WriteString(`,"title":`)
	buf.Write(title)
	writeInt(&buf, "level", sec.Level)
	writeInt(&buf, "length", sec.Length)
	buf.WriteString(`,"ratio":`)
	buf.WriteString(strconv.FormatFloat(sec.Ratio, 'f', 4, 64))
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeInt(buf *bytes.Buffer, name string, v int) {
	buf.WriteString(`,"`)
	buf.WriteString(name)
	buf.WriteString(`":`)
	buf.WriteString(strconv.Itoa(v))
}
