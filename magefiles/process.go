//go:build mage

package main

import (
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Process builds the CLI and processes the most recent unprocessed meeting.
// PM_AGENT_ARGS adds flags, e.g. PM_AGENT_ARGS="--all --limit 10".
func Process() error {
	mg.Deps(Init, Build)
	args := append([]string{"process"}, strings.Fields(os.Getenv("PM_AGENT_ARGS"))...)
	return sh.RunV(binPath(), args...)
}

// Status builds the CLI and lists processed meetings.
func Status() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "status")
}
