// Command analyzer analyses a text file and prints its statistics.
//
// Usage:
//
//	analyzer -file doc.txt [-stop stop.txt] [-sensitive s.txt] [-redundant r.txt]
//	         [-bundle vocab.yaml] [-top 10] [-sections] [-json]
//	analyzer -file doc.txt -remote localhost:9100 [-timeout 10s]
//
// "-file -" reads standard input. With -remote the document is sent to a
// running analyzer-server's RPC port and analysed with its vocabulary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/remote"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/report"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/section"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analyzer/vocab"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
)

const defaultMaxBytes = 1 << 20

type options struct {
	file, stop, sensitive, redundant, bundle string
	top                                      int
	maxBytes                                 int
	sections, json                           bool
	logLevel                                 string
	remote                                   string
	timeout                                  time.Duration
}

type result struct {
	stats     analyzer.Stats
	sections  []section.Section
	top, hits []vocab.WordCount
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.file, "file", "", "text file to analyse, - for stdin")
	fs.StringVar(&opts.stop, "stop", "", "stop word list, one word per line")
	fs.StringVar(&opts.sensitive, "sensitive", "", "sensitive word list")
	fs.StringVar(&opts.redundant, "redundant", "", "redundant word list")
	fs.StringVar(&opts.bundle, "bundle", "", "YAML vocabulary bundle with stop, sensitive and redundant keys")
	fs.IntVar(&opts.top, "top", 10, "number of top words to print")
	fs.IntVar(&opts.maxBytes, "max-bytes", defaultMaxBytes, "largest input accepted")
	fs.BoolVar(&opts.sections, "sections", false, "print the section breakdown")
	fs.BoolVar(&opts.json, "json", false, "print the JSON payload instead of text")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	fs.StringVar(&opts.remote, "remote", "", "analyzer-server RPC address; analyse remotely instead of locally")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "remote call timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.file == "" {
		fmt.Fprintln(stderr, "error: -file is required")
		fs.Usage()
		return 2
	}
	if opts.remote != "" && opts.stop+opts.sensitive+opts.redundant+opts.bundle != "" {
		fmt.Fprintln(stderr, "error: -remote uses the server's vocabulary; drop the word list flags")
		return 2
	}
	logger.SetupWriter(stderr, opts.logLevel, "text")

	if err := analyse(opts, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "analyzer: %v\n", err)
		return 1
	}
	return 0
}

func analyse(opts options, stdin io.Reader, stdout io.Writer) error {
	content, err := readInput(opts.file, stdin, opts.maxBytes)
	if err != nil {
		return err
	}
	var res *result
	if opts.remote != "" {
		res, err = analyseRemote(opts, content)
	} else {
		res, err = analyseLocal(opts, content)
	}
	if err != nil {
		return err
	}

	if opts.json {
		_, err := fmt.Fprintf(stdout, "%s\n", report.Encode(res.stats, res.sections))
		return err
	}
	printStats(stdout, res.stats)
	if len(res.top) > 0 {
		fmt.Fprintln(stdout, "\nTop words:")
		for i, wc := range res.top {
			fmt.Fprintf(stdout, "  %2d. %-20s %d\n", i+1, wc.Word, wc.Count)
		}
	}
	if len(res.hits) > 0 {
		fmt.Fprintln(stdout, "\nSensitive terms:")
		for _, wc := range res.hits {
			fmt.Fprintf(stdout, "  %-24s %d\n", wc.Word, wc.Count)
		}
	}
	if opts.sections {
		fmt.Fprintln(stdout, "\nSections:")
		for _, sec := range res.sections {
			title := sec.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(stdout, "  #%d L%d %-30s chars=%d words=%d ratio=%.4f\n",
				sec.ID, sec.Level, title, sec.Length, sec.Words, sec.Ratio)
		}
	}
	return nil
}

func analyseLocal(opts options, content []byte) (*result, error) {
	lists, err := vocabulary.LoadFiles(opts.stop, opts.sensitive, opts.redundant)
	if err != nil {
		return nil, err
	}
	if opts.bundle != "" {
		bundle, err := vocabulary.LoadBundle(opts.bundle)
		if err != nil {
			return nil, err
		}
		lists = vocabulary.Merge(lists, bundle)
	}

	session := analyzer.NewSession(analyzer.DefaultOptions())
	defer session.Close()
	lists.Apply(session)
	if err := session.Process(content); err != nil {
		return nil, err
	}
	stats := session.Stats()
	return &result{
		stats:    stats,
		sections: session.Sections(stats.SectionCount),
		top:      session.TopWords(opts.top),
		hits:     session.SensitiveHits(opts.top),
	}, nil
}

func analyseRemote(opts options, content []byte) (*result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	client, err := remote.Dial(ctx, opts.remote)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	r, err := client.Analyze(ctx, analysis.AnalyzeRequest{Content: string(content), TopN: opts.top})
	if err != nil {
		return nil, err
	}
	return &result{stats: r.Stats, sections: r.Sections, top: r.TopWords, hits: r.SensitiveWords}, nil
}

func printStats(w io.Writer, s analyzer.Stats) {
	fmt.Fprintln(w, "Analysis result:")
	fmt.Fprintf(w, "Total characters: %d\n", s.TotalChars)
	fmt.Fprintf(w, "English words: %d\n", s.EnWords)
	fmt.Fprintf(w, "CJK characters: %d\n", s.CnChars)
	fmt.Fprintf(w, "Sensitive words: %d\n", s.SensitiveCount)
	fmt.Fprintf(w, "Redundant words: %d\n", s.RedundancyCount)
	fmt.Fprintf(w, "Punctuation: %d\n", s.PunctCount)
	fmt.Fprintf(w, "Sections: %d\n", s.SectionCount)
	fmt.Fprintf(w, "Richness: %.2f\n", s.Richness)
}

var errTooLarge = errors.New("input exceeds -max-bytes")

func readInput(path string, stdin io.Reader, maxBytes int) ([]byte, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(data) > maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}
