// Package vocabulary loads the stop, sensitive and redundant word lists an
// analysis session classifies against. Lists come from plain word-list
// files, a YAML bundle, or the vocabulary_words table in PostgreSQL.
package vocabulary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names one of the three lookup lists.
type Kind string

const (
	KindStop      Kind = "stop"
	KindSensitive Kind = "sensitive"
	KindRedundant Kind = "redundant"
)

// Valid reports whether k names one of the three lists.
func (k Kind) Valid() bool {
	return k == KindStop || k == KindSensitive || k == KindRedundant
}

// Lists holds the three lookup vocabularies.
type Lists struct {
	Stop      []string `yaml:"stop" json:"stop"`
	Sensitive []string `yaml:"sensitive" json:"sensitive"`
	Redundant []string `yaml:"redundant" json:"redundant"`
}

// Target receives lookup words; *analyzer.Session satisfies it.
type Target interface {
	AddStopWord(word string)
	AddSensitiveWord(word string)
	AddRedundantWord(word string)
}

// Apply adds every list entry to t.
func (l *Lists) Apply(t Target) {
	if l == nil {
		return
	}
	for _, w := range l.Stop {
		t.AddStopWord(w)
	}
	for _, w := range l.Sensitive {
		t.AddSensitiveWord(w)
	}
	for _, w := range l.Redundant {
		t.AddRedundantWord(w)
	}
}

// Add appends a normalised word to the list for kind.
func (l *Lists) Add(kind Kind, word string) error {
	word = Normalize(word)
	if word == "" {
		return nil
	}
	switch kind {
	case KindStop:
		l.Stop = append(l.Stop, word)
	case KindSensitive:
		l.Sensitive = append(l.Sensitive, word)
	case KindRedundant:
		l.Redundant = append(l.Redundant, word)
	default:
		return fmt.Errorf("unknown vocabulary kind %q", kind)
	}
	return nil
}

// Size returns the total number of entries across the lists.
func (l *Lists) Size() int {
	if l == nil {
		return 0
	}
	return len(l.Stop) + len(l.Sensitive) + len(l.Redundant)
}

// Fingerprint identifies the list contents independent of entry order, so
// cached results can be keyed on the vocabulary they were computed with.
func (l *Lists) Fingerprint() string {
	h := sha256.New()
	if l != nil {
		for _, part := range []struct {
			kind  Kind
			words []string
		}{{KindStop, l.Stop}, {KindSensitive, l.Sensitive}, {KindRedundant, l.Redundant}} {
			words := append([]string(nil), part.words...)
			sort.Strings(words)
			fmt.Fprintf(h, "%s:%s\n", part.kind, strings.Join(words, "\x00"))
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Normalize trims a word and folds ASCII letters to lower case, matching
// how the analyzer buffers Latin words.
func Normalize(word string) string {
	word = strings.TrimSpace(word)
	b := []byte(word)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// ReadWords reads one word per line. Blank lines and lines starting with
// '#' are skipped.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, Normalize(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// LoadFiles reads the three word-list files. An empty path leaves the
// corresponding list empty.
func LoadFiles(stopPath, sensitivePath, redundantPath string) (*Lists, error) {
	lists := &Lists{}
	for _, f := range []struct {
		path string
		dst  *[]string
	}{
		{stopPath, &lists.Stop},
		{sensitivePath, &lists.Sensitive},
		{redundantPath, &lists.Redundant},
	} {
		if f.path == "" {
			continue
		}
		words, err := readWordFile(f.path)
		if err != nil {
			return nil, err
		}
		*f.dst = words
	}
	return lists, nil
}

// LoadBundle reads a YAML document with stop, sensitive and redundant keys.
func LoadBundle(path string) (*Lists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary bundle %s: %w", path, err)
	}
	var raw Lists
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing vocabulary bundle %s: %w", path, err)
	}
	lists := &Lists{}
	for _, w := range raw.Stop {
		lists.Add(KindStop, w)
	}
	for _, w := range raw.Sensitive {
		lists.Add(KindSensitive, w)
	}
	for _, w := range raw.Redundant {
		lists.Add(KindRedundant, w)
	}
	return lists, nil
}

// Merge returns the concatenation of a and b.
func Merge(a, b *Lists) *Lists {
	out := &Lists{}
	for _, l := range []*Lists{a, b} {
		if l == nil {
			continue
		}
		out.Stop = append(out.Stop, l.Stop...)
		out.Sensitive = append(out.Sensitive, l.Sensitive...)
		out.Redundant = append(out.Redundant, l.Redundant...)
	}
	return out
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list %s: %w", path, err)
	}
	defer f.Close()
	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
