// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package granola

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCredentials is returned when the desktop app's credentials file is
// missing, usually because Granola is not installed or not logged in.
var ErrNoCredentials = errors.New("granola credentials not found")

// DefaultCredentialsPath is where the Granola desktop app stores its session.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "Granola", "supabase.json")
}

// credentialsFile is the subset of supabase.json we read. workos_tokens is
// itself a JSON document encoded as a string.
type credentialsFile struct {
	WorkOSTokens string `json:"workos_tokens"`
	AccessToken  string `json:"access_token"`
}

type workOSTokens struct {
	AccessToken string `json:"access_token"`
}

// LoadAccessToken reads the bearer token from a supabase.json file. Newer
// files nest it in workos_tokens; older ones carry a top-level access_token.
func LoadAccessToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w at %s", ErrNoCredentials, path)
		}
		return "", fmt.Errorf("reading credentials %s: %w", path, err)
	}

	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	if creds.WorkOSTokens == "" {
		if creds.AccessToken != "" {
			return creds.AccessToken, nil
		}
		return "", fmt.Errorf("no workos_tokens or access_token in %s: log in to Granola", path)
	}

	var tokens workOSTokens
	if err := json.Unmarshal([]byte(creds.WorkOSTokens), &tokens); err != nil {
		return "", fmt.Errorf("parsing workos_tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return "", fmt.Errorf("no access_token in workos_tokens")
	}
	return tokens.AccessToken, nil
}
