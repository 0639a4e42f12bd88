// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package granola fetches meeting documents and transcripts from the Granola
// note service.
package granola

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/pm-agent/internal/httputil"
	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	DefaultBaseURL       = "https://api.granola.ai"
	DefaultClientVersion = "5.354.0"
	defaultTimeout       = 60 * time.Second

	documentsPath  = "/v2/get-documents"
	transcriptPath = "/v1/get-document-transcript"

	// errorBodyLimit bounds how much of a failed response is kept.
	errorBodyLimit = 512
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("granola %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client is an authenticated Granola API client.
type Client struct {
	baseURL    string
	token      string
	version    string
	maxRetries int
	http       *http.Client
	logger     *slog.Logger
}

// New builds a client from cfg. The access token comes from cfg.AccessToken
// when set, otherwise from the credentials file.
func New(cfg types.GranolaConfig, logger *slog.Logger) (*Client, error) {
	token := cfg.AccessToken
	if token == "" {
		path := cfg.CredentialsPath
		if path == "" {
			path = DefaultCredentialsPath()
		}
		t, err := LoadAccessToken(path)
		if err != nil {
			return nil, err
		}
		token = t
	}
	return NewWithToken(cfg, token, logger), nil
}

// NewWithToken builds a client with an explicit token.
func NewWithToken(cfg types.GranolaConfig, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.ClientVersion
	if version == "" {
		version = DefaultClientVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		version:    version,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type documentsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// documentsResponse accepts both "docs" and the older "documents" key.
type documentsResponse struct {
	Docs      []types.Document `json:"docs"`
	Documents []types.Document `json:"documents"`
}

// ListDocuments returns up to limit documents, newest first.
func (c *Client) ListDocuments(ctx context.Context, limit, offset int) ([]types.Document, error) {
	var resp documentsResponse
	if err := c.post(ctx, documentsPath, documentsRequest{Limit: limit, Offset: offset}, &resp); err != nil {
		return nil, err
	}
	docs := resp.Docs
	if docs == nil {
		docs = resp.Documents
	}
	c.logger.Debug("fetched documents", "count", len(docs), "limit", limit, "offset", offset)
	return docs, nil
}

type transcriptRequest struct {
	DocumentID string `json:"document_id"`
}

// Transcript returns the transcript segments of a document. A document
// without a transcript yields an empty slice.
func (c *Client) Transcript(ctx context.Context, documentID string) ([]types.TranscriptSegment, error) {
	var segments []types.TranscriptSegment
	if err := c.post(ctx, transcriptPath, transcriptRequest{DocumentID: documentID}, &segments); err != nil {
		return nil, err
	}
	c.logger.Debug("fetched transcript", "document_id", documentID, "segments", len(segments))
	return segments, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Granola/"+c.version)
	req.Header.Set("X-Client-Version", c.version)

	c.logger.Debug("granola request", "url", req.URL.String(), "payload", string(payload))

	resp, err := httputil.DoWithRetry(ctx, c.http, req, httputil.Policy{MaxRetries: c.maxRetries, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("calling granola %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding granola %s response: %w", path, err)
	}
	return nil
}
