package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"WARN", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			ctx := cli.NewContext(nil, set, nil)

			err := setupLogger(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIngestCommand_VaultRequired(t *testing.T) {
	err := newApp().Run([]string{"memobot", "ingest", "--mock", "--text", "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault")
}

func TestIngestCommand_MockEndToEnd(t *testing.T) {
	vault := t.TempDir()

	err := newApp().Run([]string{
		"memobot", "ingest",
		"--vault", vault,
		"--text", "1500 lunch with the team",
		"--channel", "money",
		"--mock",
	})
	require.NoError(t, err)

	// The mock enricher reports low confidence, so the currency
	// heuristic files the note under finance.
	matches, err := filepath.Glob(filepath.Join(vault, "06_Finance", "*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "1500 lunch with the team")
	assert.Contains(t, content, "ai_processed: true")

	// The fingerprint index lives under the vault, outside note folders.
	_, err = os.Stat(filepath.Join(vault, ".memobot", "index"))
	assert.NoError(t, err)
}

func TestIngestCommand_DuplicateRunsShareOneNote(t *testing.T) {
	vault := t.TempDir()
	args := []string{
		"memobot", "ingest",
		"--vault", vault,
		"--text", "repeated memo",
		"--mock",
	}

	require.NoError(t, newApp().Run(args))
	require.NoError(t, newApp().Run(args))

	matches, err := filepath.Glob(filepath.Join(vault, "00_Inbox", "*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1, "re-ingesting identical content must not create a second note")
}

func TestIngestCommand_CustomRules(t *testing.T) {
	vault := t.TempDir()
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(strings.TrimSpace(`
default_folder: "05_Archive"
heuristics: []
`)), 0644))

	err := newApp().Run([]string{
		"memobot", "ingest",
		"--vault", vault,
		"--text", "plain unclassifiable memo",
		"--rules", rules,
		"--mock",
	})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(vault, "05_Archive", "*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestStatsCommand(t *testing.T) {
	vault := t.TempDir()

	for _, text := range []string{"first memo", "second memo"} {
		require.NoError(t, newApp().Run([]string{
			"memobot", "ingest", "--vault", vault, "--text", text, "--mock",
		}))
	}

	err := newApp().Run([]string{"memobot", "stats", "--vault", vault})
	assert.NoError(t, err)
}
