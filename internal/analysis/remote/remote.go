// Package remote exposes the analysis service over the internal RPC
// protocol and provides a typed client for it.
package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/vocabulary"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/rpc"
)

const (
	MethodAnalyze    = "Analyzer.Analyze"
	MethodGetReport  = "Analyzer.GetReport"
	MethodVocabulary = "Analyzer.Vocabulary"
)

// Service is the part of the analysis service served remotely.
type Service interface {
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error)
	Get(ctx context.Context, documentID string) (*analysis.Report, error)
	Vocabulary() *vocabulary.Lists
}

// GetReportParams names the report to fetch.
type GetReportParams struct {
	DocumentID string `json:"document_id"`
}

// VocabularyInfo summarises the lookup lists in effect.
type VocabularyInfo struct {
	Fingerprint string `json:"fingerprint"`
	Stop        int    `json:"stop"`
	Sensitive   int    `json:"sensitive"`
	Redundant   int    `json:"redundant"`
}

// Register adds the analyzer methods to s.
func Register(s *rpc.Server, svc Service) {
	s.Register(MethodAnalyze, func(ctx context.Context, params json.RawMessage) (any, error) {
		var req analysis.AnalyzeRequest
		if err := decode(params, &req); err != nil {
			return nil, err
		}
		return svc.Analyze(ctx, req)
	})
	s.Register(MethodGetReport, func(ctx context.Context, params json.RawMessage) (any, error) {
		var p GetReportParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return svc.Get(ctx, p.DocumentID)
	})
	s.Register(MethodVocabulary, func(ctx context.Context, _ json.RawMessage) (any, error) {
		lists := svc.Vocabulary()
		return VocabularyInfo{
			Fingerprint: lists.Fingerprint(),
			Stop:        len(lists.Stop),
			Sensitive:   len(lists.Sensitive),
			Redundant:   len(lists.Redundant),
		}, nil
	})
}

func decode(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "decoding params: %v", err)
	}
	return nil
}

// Client calls a remote analysis service.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the analyzer RPC endpoint at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	c, err := rpc.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
	var r analysis.Report
	if err := c.rpc.Call(ctx, MethodAnalyze, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Get(ctx context.Context, documentID string) (*analysis.Report, error) {
	var r analysis.Report
	if err := c.rpc.Call(ctx, MethodGetReport, GetReportParams{DocumentID: documentID}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Vocabulary(ctx context.Context) (VocabularyInfo, error) {
	var info VocabularyInfo
	err := c.rpc.Call(ctx, MethodVocabulary, struct{}{}, &info)
	return info, err
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
