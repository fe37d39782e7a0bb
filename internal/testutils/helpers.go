package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFlows seeds dir with flow documents keyed by relative file name.
func WriteFlows(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// BookingFlows is a small two-flow bundle used across package tests.
var BookingFlows = map[string]string{
	"main.md": `---
name: main
start: entry
nodes:
  - name: entry
    on_receive: [greet]
    next:
      - condition: wantsBooking
        to: booking
      - condition: true
        to: fallback
  - name: fallback
catch_all:
  - condition: wantsHelp
    to: help
---
Entry flow.`,
	"booking.json": `{
  "name": "booking",
  "start": "ask",
  "nodes": [
    {"name": "ask", "next": [{"condition": "hasCity", "to": "confirm"}]},
    {"name": "confirm", "next": [{"to": "##"}]}
  ]
}`,
}
