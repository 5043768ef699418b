package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/store"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/config"
)

type memWriter struct{ lists *vocabulary.Lists }

func (m *memWriter) Save(_ context.Context, kind vocabulary.Kind, words []string) error {
	for _, w := range words {
		if err := m.lists.Add(kind, w); err != nil {
			return err
		}
	}
	return nil
}

func newMux(t *testing.T, maxBytes int, opts ...service.Option) *http.ServeMux {
	t.Helper()
	cfg := config.AnalyzerConfig{TopWords: 5, MaxDocumentBytes: maxBytes}
	svc := service.New(cfg, vocabulary.Static(&vocabulary.Lists{Stop: []string{"the"}}),
		append([]service.Option{service.WithStore(store.NewMemory(10))}, opts...)...)
	mux := http.NewServeMux()
	New(svc, maxBytes).Register(mux)
	return mux
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeAndFetch(t *testing.T) {
	mux := newMux(t, 1<<20)

	rec := do(mux, http.MethodPost, "/api/v1/analyze", `{"document_id":"d1","content":"# Intro\nthe quick fox\n"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body)
	}
	var report analysis.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.DocumentID != "d1" || report.Stats.EnWords != 3 || report.UniqueWords != 2 {
		t.Errorf("report = %+v", report)
	}

	rec = do(mux, http.MethodGet, "/api/v1/reports/d1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec = do(mux, http.MethodGet, "/api/v1/reports/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", rec.Code)
	}

	rec = do(mux, http.MethodGet, "/api/v1/reports?limit=5", "")
	var list struct {
		Reports []analysis.Report `json:"reports"`
		Count   int               `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || list.Reports[0].DocumentID != "d1" {
		t.Errorf("list = %+v", list)
	}
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	mux := newMux(t, 16)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"content":`, http.StatusBadRequest},
		{"blank content", `{"content":"  "}`, http.StatusBadRequest},
		{"bad document id", `{"document_id":"a b","content":"x"}`, http.StatusBadRequest},
		{"content over limit", `{"content":"` + strings.Repeat("a", 17) + `"}`, http.StatusBadRequest},
		{"body over limit", `{"content":"` + strings.Repeat("a", bodyOverhead+32) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, http.MethodPost, "/api/v1/analyze", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	rec := do(mux, http.MethodPost, "/api/v1/analyze", `{"content":""}`)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Fields["content"] == "" {
		t.Errorf("validation response has no content field: %+v", body)
	}
}

func TestListReportsLimit(t *testing.T) {
	mux := newMux(t, 0)
	for _, q := range []string{"0", "101", "x"} {
		if rec := do(mux, http.MethodGet, "/api/v1/reports?limit="+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestVocabularyRoutes(t *testing.T) {
	readOnly := newMux(t, 0)
	if rec := do(readOnly, http.MethodPost, "/api/v1/vocabulary/stop", `{"words":["a"]}`); rec.Code != http.StatusConflict {
		t.Errorf("read-only status = %d, want 409", rec.Code)
	}

	writable := newMux(t, 0, service.WithVocabularyWriter(&memWriter{lists: &vocabulary.Lists{}}))
	tests := []struct {
		target string
		body   string
		want   int
	}{
		{"/api/v1/vocabulary/sensitive", `{"words":["secret"]}`, http.StatusOK},
		{"/api/v1/vocabulary/colour", `{"words":["red"]}`, http.StatusBadRequest},
		{"/api/v1/vocabulary/stop", `{"words":[]}`, http.StatusBadRequest},
		{"/api/v1/vocabulary/stop", `not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(writable, http.MethodPost, tt.target, tt.body); rec.Code != tt.want {
			t.Errorf("POST %s %s: status = %d, want %d", tt.target, tt.body, rec.Code, tt.want)
		}
	}

	rec := do(readOnly, http.MethodGet, "/api/v1/vocabulary", "")
	var sizes map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&sizes); err != nil {
		t.Fatal(err)
	}
	if sizes["stop"] != float64(1) || sizes["fingerprint"] == "" {
		t.Errorf("vocabulary = %+v", sizes)
	}
}

func TestCacheRoutes(t *testing.T) {
	mux := newMux(t, 0)
	do(mux, http.MethodPost, "/api/v1/analyze", `{"content":"hello"}`)

	rec := do(mux, http.MethodGet, "/api/v1/cache/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"hit_ratio"`) {
		t.Errorf("stats = %d %s", rec.Code, rec.Body)
	}
	rec = do(mux, http.MethodPost, "/api/v1/cache/invalidate", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"keys_deleted":0`) {
		t.Errorf("invalidate = %d %s", rec.Code, rec.Body)
	}
}
