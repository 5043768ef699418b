package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/remote"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/rpc"
)

func TestRunTextOutput(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.txt")
	stop := filepath.Join(dir, "stop.txt")
	os.WriteFile(doc, []byte("# Intro\nThe cat saw the other cat.\n"), 0o644)
	os.WriteFile(stop, []byte("the\n"), 0o644)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-file", doc, "-stop", stop, "-sections"}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"English words: 6\n",
		"Punctuation: 1\n",
		"Sections: 2\n",
		"cat",
		"Intro",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSONFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-file", "-", "-json"}, strings.NewReader("hello 世界"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	var payload struct {
		EnWords int `json:"en_words"`
		CnChars int `json:"cn_chars"`
		Words   int `json:"words"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("payload %q: %v", stdout.String(), err)
	}
	if payload.EnWords != 1 || payload.CnChars != 2 || payload.Words != 3 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, nil, &stdout, &stderr); code != 2 {
		t.Errorf("missing -file exit = %d, want 2", code)
	}
	if code := run([]string{"-file", filepath.Join(t.TempDir(), "none.txt")}, nil, &stdout, &stderr); code != 1 {
		t.Errorf("missing file exit = %d, want 1", code)
	}
	if code := run([]string{"-file", "-", "-max-bytes", "3"}, strings.NewReader("abcd"), &stdout, &stderr); code != 1 {
		t.Errorf("oversized input exit = %d, want 1", code)
	}
}

func TestRunRemote(t *testing.T) {
	svc := service.New(config.AnalyzerConfig{TopWords: 10, MaxDocumentBytes: 1 << 20},
		vocabulary.Static(&vocabulary.Lists{Stop: []string{"the"}}))
	s := rpc.NewServer()
	remote.Register(s, svc)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.ServeListener(ln)
	defer s.Stop()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-file", "-", "-remote", ln.Addr().String()},
		strings.NewReader("The cat saw the other cat.\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "English words: 6\n") || !strings.Contains(out, "cat") {
		t.Errorf("output:\n%s", out)
	}

	if code := run([]string{"-file", "-", "-remote", ln.Addr().String(), "-stop", "x.txt"}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("-remote with word lists exit = %d, want 2", code)
	}
}
