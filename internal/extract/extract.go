// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns merged meeting notes into PM action items,
// development tickets and a summary by prompting a language model.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/pm-agent/pkg/types"
)

const defaultCallRetries = 3

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// ResponseError reports a model reply that could not be used: it was not
// JSON, or it did not match the result schema.
type ResponseError struct {
	Raw    string
	Issues []Issue
	Err    error
}

func (e *ResponseError) Error() string {
	if len(e.Issues) > 0 {
		parts := make([]string, len(e.Issues))
		for i, issue := range e.Issues {
			parts[i] = issue.String()
		}
		return "model reply does not match result schema: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("parsing model reply as JSON: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// Options tunes a Processor.
type Options struct {
	// CallRetries is the number of retries for failed backend calls (default 3).
	CallRetries int

	// HighPriority, when set, raises items whose title or description it
	// matches to high priority.
	HighPriority func(text string) bool
}

// Processor extracts structured results from meeting notes.
type Processor struct {
	backend Backend
	prompts Prompts
	opts    Options
	logger  *slog.Logger
}

// NewProcessor returns a Processor that prompts backend with prompts.
func NewProcessor(backend Backend, prompts Prompts, opts Options, logger *slog.Logger) *Processor {
	if opts.CallRetries <= 0 {
		opts.CallRetries = defaultCallRetries
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{backend: backend, prompts: prompts, opts: opts, logger: logger}
}

// Extract sends notes to the model and returns the validated result.
// Backend failures are retried; an unusable reply is a *ResponseError and
// is not retried.
func (p *Processor) Extract(ctx context.Context, notes string) (*types.ExtractionResult, error) {
	prompt, err := p.prompts.Extraction(notes)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("calling model", "prompt_chars", len(prompt))
	raw, err := callWithRetry(ctx, p.backend, p.prompts.System, prompt, p.opts.CallRetries)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}

	result, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	p.normalize(result)
	p.logger.Debug("extracted",
		"pm_items", len(result.PMActionItems),
		"dev_tickets", len(result.DevTickets),
		"additional_items", len(result.Summary.AdditionalActionItems))
	return result, nil
}

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, system, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, err := backend.Complete(ctx, system, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// ParseResponse strips a Markdown code fence from a model reply, validates
// the JSON against the result schema and decodes it.
func ParseResponse(reply string) (*types.ExtractionResult, error) {
	body := stripCodeFence(reply)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &ResponseError{Raw: reply, Err: err}
	}
	issues, err := validateResult(doc)
	if err != nil {
		return nil, fmt.Errorf("validating model reply: %w", err)
	}
	if len(issues) > 0 {
		return nil, &ResponseError{Raw: reply, Issues: issues}
	}

	var result types.ExtractionResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, &ResponseError{Raw: reply, Err: err}
	}
	return &result, nil
}

// stripCodeFence returns the content of the first ```json fence, else the
// first ``` fence, else the reply unchanged. An unterminated fence runs to
// the end of the reply.
func stripCodeFence(reply string) string {
	for _, open := range []string{"```json", "```"} {
		start := strings.Index(reply, open)
		if start < 0 {
			continue
		}
		rest := reply[start+len(open):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(reply)
}

// normalize lowercases priorities, defaults unknown ones to medium and
// applies priority-keyword escalation.
func (p *Processor) normalize(r *types.ExtractionResult) {
	for i := range r.PMActionItems {
		item := &r.PMActionItems[i]
		item.Priority = normalizePriority(item.Priority)
		if p.escalate(item.Title, item.Description) {
			item.Priority = types.PriorityHigh
		}
	}
	for i := range r.DevTickets {
		t := &r.DevTickets[i]
		t.Priority = normalizePriority(t.Priority)
		t.Type = strings.ToLower(strings.TrimSpace(t.Type))
		if p.escalate(t.Title, t.Description) {
			t.Priority = types.PriorityHigh
		}
	}
}

func (p *Processor) escalate(texts ...string) bool {
	if p.opts.HighPriority == nil {
		return false
	}
	for _, s := range texts {
		if p.opts.HighPriority(s) {
			return true
		}
	}
	return false
}

func normalizePriority(pr types.Priority) types.Priority {
	switch v := types.Priority(strings.ToLower(strings.TrimSpace(string(pr)))); v {
	case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		return v
	}
	return types.PriorityMedium
}
