package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestClassify_CategoryMapping(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		category string
		folder   string
	}{
		{"work", FolderProjects},
		{"project", FolderProjects},
		{"learning", FolderKnowledge},
		{"life", FolderDailyNotes},
		{"idea", FolderIdeas},
		{"finance", FolderFinance},
		{"task", FolderTasks},
		{"health", FolderHealth},
		{"other", FolderInbox},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			decision := c.Classify("some text", &core.EnrichmentResult{
				Category:   tt.category,
				Confidence: 0.9,
			})
			assert.Equal(t, tt.folder, decision.TargetFolder)
			assert.NotEmpty(t, decision.Rationale)
		})
	}
}

func TestClassify_LowConfidenceFallsBackToHeuristics(t *testing.T) {
	c := newTestClassifier(t)

	// Confidence below the threshold: category table is ignored, the
	// deadline heuristic applies.
	decision := c.Classify("need to finish the report by friday", &core.EnrichmentResult{
		Category:   "work",
		Confidence: 0.4,
	})
	assert.Equal(t, FolderTasks, decision.TargetFolder)
}

func TestClassify_AbsentEnrichmentUsesHeuristics(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name   string
		text   string
		folder string
	}{
		{"expense memo", "1500 lunch with the team", FolderFinance},
		{"currency symbol", "spent $42 on cables", FolderFinance},
		{"deadline keyword", "TODO finish the deck by tomorrow", FolderTasks},
		{"idea keyword", "idea: self-hosting the vault sync", FolderIdeas},
		{"no match", "sunny day out today", FolderInbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := c.Classify(tt.text, nil)
			assert.Equal(t, tt.folder, decision.TargetFolder)
		})
	}
}

func TestClassify_ThresholdBoundary(t *testing.T) {
	c := newTestClassifier(t)

	// At exactly the threshold the category table applies.
	decision := c.Classify("plain text", &core.EnrichmentResult{
		Category:   "health",
		Confidence: 0.7,
	})
	assert.Equal(t, FolderHealth, decision.TargetFolder)

	decision = c.Classify("plain text", &core.EnrichmentResult{
		Category:   "health",
		Confidence: 0.69,
	})
	assert.Equal(t, FolderInbox, decision.TargetFolder)
}

func TestClassify_UnknownCategoryFallsThrough(t *testing.T) {
	c := newTestClassifier(t)

	decision := c.Classify("what if we brainstorm this", &core.EnrichmentResult{
		Category:   "unmapped",
		Confidence: 0.95,
	})
	assert.Equal(t, FolderIdeas, decision.TargetFolder, "unknown category should fall back to heuristics")
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier(t)

	enrichment := &core.EnrichmentResult{Category: "finance", Confidence: 0.8}
	first := c.Classify("1500 lunch", enrichment)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("1500 lunch", enrichment))
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Heuristics = []HeuristicConfig{{Name: "bad", Pattern: "([", Folder: FolderInbox}}

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, FolderInbox, c.DefaultFolder())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	rules := `
confidence_threshold: 0.9
default_folder: "99_Misc"
heuristics:
  - name: "receipts"
    pattern: "(?i)receipt"
    folder: "06_Finance"
`
	require.NoError(t, os.WriteFile(path, []byte(rules), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.ConfidenceThreshold)
	assert.Equal(t, "99_Misc", cfg.DefaultFolder)
	require.Len(t, cfg.Heuristics, 1)
	assert.Equal(t, "receipts", cfg.Heuristics[0].Name)
	assert.NotEmpty(t, cfg.CategoryFolders, "unset sections keep their defaults")

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "06_Finance", c.Classify("lunch receipt", nil).TargetFolder)
	assert.Equal(t, "99_Misc", c.Classify("anything else", nil).TargetFolder)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
