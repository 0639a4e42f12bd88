// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"sort"
	"strings"

	"github.com/pdiddy/pm-agent/pkg/types"
)

// Rules answers keyword and people questions from the rules section.
type Rules struct {
	cfg   types.RulesConfig
	names []string
}

// NewRules returns Rules over cfg. Handle lookups that fall through to
// prefix matching try names in sorted order so results are stable.
func NewRules(cfg types.RulesConfig) Rules {
	names := make([]string, 0, len(cfg.SlackHandles))
	for name := range cfg.SlackHandles {
		names = append(names, name)
	}
	sort.Strings(names)
	return Rules{cfg: cfg, names: names}
}

// ShouldSkip reports whether a meeting title contains a skip keyword,
// case-insensitively.
func (r Rules) ShouldSkip(title string) bool {
	return containsAny(title, r.cfg.SkipKeywords)
}

// IsHighPriority reports whether text contains a priority keyword,
// case-insensitively.
func (r Rules) IsHighPriority(text string) bool {
	return containsAny(text, r.cfg.PriorityKeywords)
}

// MinMeetingLength is the shortest merged-notes length worth extracting.
func (r Rules) MinMeetingLength() int {
	return r.cfg.MinMeetingLength
}

// SlackHandle maps a person's name to a Slack handle. It tries an exact
// match, then a case-insensitive match, then a configured name starting
// with the first word of name. The handle always starts with "@".
func (r Rules) SlackHandle(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if h, ok := r.cfg.SlackHandles[name]; ok {
		return atHandle(h), true
	}
	for _, real := range r.names {
		if strings.EqualFold(real, name) {
			return atHandle(r.cfg.SlackHandles[real]), true
		}
	}
	first := strings.ToLower(strings.Fields(name)[0])
	for _, real := range r.names {
		if strings.HasPrefix(strings.ToLower(real), first) {
			return atHandle(r.cfg.SlackHandles[real]), true
		}
	}
	return "", false
}

func atHandle(h string) string {
	if strings.HasPrefix(h, "@") {
		return h
	}
	return "@" + h
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
