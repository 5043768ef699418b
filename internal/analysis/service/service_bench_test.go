package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/store"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `# Overview
The analyzer walks a document once, splitting Latin words and CJK ideographs,
counting punctuation and tracking sections by their headings.
## 中文部分
中文文本分析需要逐字统计，同时匹配敏感词和冗余词。`,
	"long": strings.Repeat(`# Section
Basically the report lists totals, the richest words and every section with
its share of the document. 敏感词会被单独统计，不计入词频。
`, 50),
}

func benchService() *Service {
	lists := &vocabulary.Lists{
		Stop:      []string{"the", "a", "and"},
		Sensitive: []string{"敏感词", "secret"},
		Redundant: []string{"basically"},
	}
	return New(testConfig(), vocabulary.Static(lists), WithStore(store.NewMemory(100)))
}

// BenchmarkAnalyze measures uncached analyses; a nil-backend cache never
// stores reports.
func BenchmarkAnalyze(b *testing.B) {
	svc := benchService()
	ctx := context.Background()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			req := analysis.AnalyzeRequest{DocumentID: "bench", Content: text}
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				if _, err := svc.Analyze(ctx, req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAnalyzeParallel(b *testing.B) {
	svc := benchService()
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		req := analysis.AnalyzeRequest{DocumentID: "bench", Content: text}
		for pb.Next() {
			if _, err := svc.Analyze(ctx, req); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
