// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pm-agent/internal/httputil"
	"github.com/pdiddy/pm-agent/pkg/types"
)

// --- mock backends ---

type mockBackend struct {
	reply  string
	err    error
	calls  int
	system string
	prompt string
}

func (m *mockBackend) Complete(_ context.Context, system, prompt string) (string, error) {
	m.calls++
	m.system, m.prompt = system, prompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// failNTimesBackend fails the first N calls, then succeeds.
type failNTimesBackend struct {
	failures  int
	callCount int
	reply     string
}

func (f *failNTimesBackend) Complete(_ context.Context, _, _ string) (string, error) {
	f.callCount++
	if f.callCount <= f.failures {
		return "", fmt.Errorf("transient error (call %d)", f.callCount)
	}
	return f.reply, nil
}

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

const sampleReply = `{
  "pm_action_items": [
    {"title": "Draft roadmap", "description": "Q3 roadmap for review", "priority": "Medium", "deadline": "Friday"},
    {"title": "Email legal", "description": "Blocker for launch", "priority": "low", "deadline": null}
  ],
  "dev_tickets": [
    {"title": "Add SSO", "description": "SAML login", "type": "Backend", "priority": "high",
     "acceptance_criteria": ["Users can log in with Okta"]}
  ],
  "summary": {
    "overview": "Planning sync.",
    "key_decisions": ["Ship SSO first"],
    "additional_action_items": [{"assignee": "Dana", "task": "Book venue"}],
    "next_steps": ["Review next week"]
  }
}`

func mustPrompts(t *testing.T, cfg types.PromptConfig) Prompts {
	t.Helper()
	p, err := NewPrompts(cfg)
	require.NoError(t, err)
	return p
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "Here you go:\n```json\n{\"a\":1}\n```\nThanks", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	result, err := ParseResponse("```json\n" + sampleReply + "\n```")
	require.NoError(t, err)

	require.Len(t, result.PMActionItems, 2)
	assert.Equal(t, "Draft roadmap", result.PMActionItems[0].Title)
	require.NotNil(t, result.PMActionItems[0].Deadline)
	assert.Equal(t, "Friday", *result.PMActionItems[0].Deadline)
	assert.Nil(t, result.PMActionItems[1].Deadline)

	require.Len(t, result.DevTickets, 1)
	assert.Equal(t, []string{"Users can log in with Okta"}, result.DevTickets[0].AcceptanceCriteria)
	assert.Equal(t, "Planning sync.", result.Summary.Overview)
	assert.Equal(t, "Dana", result.Summary.AdditionalActionItems[0].Assignee)
}

func TestParseResponseEmptySections(t *testing.T) {
	result, err := ParseResponse(`{"pm_action_items": [], "dev_tickets": [], "summary": {"overview": ""}}`)
	require.NoError(t, err)
	assert.Empty(t, result.PMActionItems)
	assert.Empty(t, result.DevTickets)
	assert.True(t, result.Summary.IsZero())
}

func TestParseResponseNotJSON(t *testing.T) {
	_, err := ParseResponse("I could not find any action items.")
	require.Error(t, err)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, "I could not find any action items.", respErr.Raw)
	assert.Empty(t, respErr.Issues)
	assert.Contains(t, err.Error(), "parsing model reply as JSON")
}

func TestParseResponseSchemaViolation(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		where string
	}{
		{"items not array", `{"pm_action_items": "none"}`, "/pm_action_items"},
		{"missing title", `{"dev_tickets": [{"description": "x"}]}`, "/dev_tickets/0"},
		{"criteria not strings", `{"dev_tickets": [{"title": "t", "acceptance_criteria": [1]}]}`, "/dev_tickets/0/acceptance_criteria/0"},
		{"root array", `[]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.reply)
			var respErr *ResponseError
			require.True(t, errors.As(err, &respErr), "got %v", err)
			require.NotEmpty(t, respErr.Issues)
			var locations []string
			for _, issue := range respErr.Issues {
				locations = append(locations, issue.Location)
			}
			assert.Contains(t, locations, tt.where)
		})
	}
}

func TestCallWithRetry(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		b := &failNTimesBackend{failures: 2, reply: "ok"}
		reply, err := callWithRetry(context.Background(), b, "s", "p", 3)
		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
		assert.Equal(t, 3, b.callCount)
	})

	t.Run("exhausts retries", func(t *testing.T) {
		b := &failNTimesBackend{failures: 10}
		_, err := callWithRetry(context.Background(), b, "s", "p", 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 retries")
		assert.Equal(t, 3, b.callCount)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := &failNTimesBackend{failures: 10}
		_, err := callWithRetry(ctx, b, "s", "p", 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProcessorExtract(t *testing.T) {
	backend := &mockBackend{reply: sampleReply}
	keywords := []string{"blocker"}
	p := NewProcessor(backend, mustPrompts(t, types.PromptConfig{CompanyContext: "Acme"}), Options{
		HighPriority: func(text string) bool {
			for _, k := range keywords {
				if strings.Contains(strings.ToLower(text), k) {
					return true
				}
			}
			return false
		},
	}, nil)

	result, err := p.Extract(context.Background(), "# Transcript\n\nWe need SSO.")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, backend.prompt, "# Transcript\n\nWe need SSO.")
	assert.Contains(t, backend.system, "Company Context: Acme")

	assert.Equal(t, types.PriorityMedium, result.PMActionItems[0].Priority)
	assert.Equal(t, types.PriorityHigh, result.PMActionItems[1].Priority, "blocker keyword escalates")
	assert.Equal(t, "backend", result.DevTickets[0].Type)
}

func TestProcessorExtractBackendFailure(t *testing.T) {
	backend := &mockBackend{err: errors.New("boom")}
	p := NewProcessor(backend, mustPrompts(t, types.PromptConfig{}), Options{CallRetries: 1}, nil)

	_, err := p.Extract(context.Background(), "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 2, backend.calls)
}

func TestProcessorExtractBadReplyNotRetried(t *testing.T) {
	backend := &mockBackend{reply: "not json"}
	p := NewProcessor(backend, mustPrompts(t, types.PromptConfig{}), Options{}, nil)

	_, err := p.Extract(context.Background(), "notes")
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, 1, backend.calls)
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   types.Priority
		want types.Priority
	}{
		{"HIGH", types.PriorityHigh},
		{" low ", types.PriorityLow},
		{"medium", types.PriorityMedium},
		{"critical", types.PriorityMedium},
		{"", types.PriorityMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePriority(tt.in), "input %q", tt.in)
	}
}
