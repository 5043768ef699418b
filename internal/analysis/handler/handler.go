// Package handler exposes the analysis service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/service"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/validator"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/logger"
)

// bodyOverhead leaves room for the JSON envelope around the content.
const bodyOverhead = 64 << 10

type Handler struct {
	svc     *service.Service
	maxBody int64
	logger  *slog.Logger
}

// New serves svc. maxDocumentBytes bounds request bodies; 0 leaves them
// unbounded.
func New(svc *service.Service, maxDocumentBytes int) *Handler {
	var maxBody int64
	if maxDocumentBytes > 0 {
		maxBody = int64(maxDocumentBytes) + bodyOverhead
	}
	return &Handler{
		svc:     svc,
		maxBody: maxBody,
		logger:  slog.Default().With("component", "analysis-handler"),
	}
}

// Register adds the analysis routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/analyze", h.Analyze)
	mux.HandleFunc("GET /api/v1/reports", h.ListReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", h.GetReport)
	mux.HandleFunc("GET /api/v1/vocabulary", h.Vocabulary)
	mux.HandleFunc("POST /api/v1/vocabulary/{kind}", h.AddVocabulary)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.InvalidateCache)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	var req analysis.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	report, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.fail(w, r, "analysis failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "loading report failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// ListReports returns recent reports, newest first (?limit=, default 20).
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	reports, err := h.svc.List(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "listing reports failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

func (h *Handler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	lists := h.svc.Vocabulary()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"fingerprint": lists.Fingerprint(),
		"stop":        len(lists.Stop),
		"sensitive":   len(lists.Sensitive),
		"redundant":   len(lists.Redundant),
	})
}

type addWordsRequest struct {
	Words []string `json:"words"`
}

func (h *Handler) AddVocabulary(w http.ResponseWriter, r *http.Request) {
	kind := vocabulary.Kind(r.PathValue("kind"))
	var req addWordsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, bodyOverhead)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Words) == 0 {
		h.writeError(w, http.StatusBadRequest, "words must not be empty")
		return
	}
	if err := h.svc.AddVocabulary(r.Context(), kind, req.Words); err != nil {
		h.fail(w, r, "updating vocabulary failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"kind":        kind,
		"added":       len(req.Words),
		"fingerprint": h.svc.Vocabulary().Fingerprint(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses := h.svc.CacheStats()
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"hits": hits, "misses": misses, "hit_ratio": ratio})
}

// InvalidateCache drops cached reports (?fingerprint= narrows it to one
// vocabulary).
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.InvalidateCache(r.Context(), r.URL.Query().Get("fingerprint"))
	if err != nil {
		h.fail(w, r, "cache invalidation failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"keys_deleted": deleted})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(message, "error", err, "status_code", status)
		h.writeError(w, status, message)
		return
	}
	log.Warn(message, "error", err, "status_code", status)
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
