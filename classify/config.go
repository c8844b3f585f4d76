// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vault folder names, mirroring the numbered vault layout.
const (
	FolderInbox      = "00_Inbox"
	FolderProjects   = "01_Projects"
	FolderDailyNotes = "02_DailyNotes"
	FolderIdeas      = "03_Ideas"
	FolderFinance    = "06_Finance"
	FolderTasks      = "07_Tasks"
	FolderHealth     = "08_Health"
	FolderKnowledge  = "09_Knowledge"
)

// HeuristicConfig is one ordered predicate+mapper rule: a regular
// expression matched against the raw content text and the folder it maps
// to.
type HeuristicConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Folder  string `yaml:"folder"`
}

// Config drives the classifier. The mapping table and heuristic ordering
// are configuration, not code, so they can be extended without touching
// the algorithm.
type Config struct {
	// ConfidenceThreshold is the minimum enrichment confidence for the
	// category -> folder table to apply.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// DefaultFolder is the catch-all when nothing matches.
	DefaultFolder string `yaml:"default_folder"`

	// CategoryFolders maps enrichment categories to vault folders.
	CategoryFolders map[string]string `yaml:"category_folders"`

	// Heuristics are evaluated in order against the raw text when the
	// enrichment category is absent or below threshold.
	Heuristics []HeuristicConfig `yaml:"heuristics"`
}

// DefaultConfig returns the built-in classification rules.
func DefaultConfig() *Config {
	return &Config{
		ConfidenceThreshold: 0.7,
		DefaultFolder:       FolderInbox,
		CategoryFolders: map[string]string{
			"work":     FolderProjects,
			"project":  FolderProjects,
			"learning": FolderKnowledge,
			"life":     FolderDailyNotes,
			"idea":     FolderIdeas,
			"finance":  FolderFinance,
			"task":     FolderTasks,
			"health":   FolderHealth,
			"other":    FolderInbox,
		},
		Heuristics: []HeuristicConfig{
			{
				Name:    "currency",
				Pattern: `(?i)(?:[$€£¥]\s*\d|\b\d[\d,.]*\s*(?:yen|usd|eur|dollars?|円)\b|^\s*\d[\d,.]*\s+\S)`,
				Folder:  FolderFinance,
			},
			{
				Name:    "deadline",
				Pattern: `(?i)\b(?:todo|to-do|deadline|due|remind(?:er)?|need to|must|by (?:mon|tues|wednes|thurs|fri|satur|sun)day|by tomorrow)\b`,
				Folder:  FolderTasks,
			},
			{
				Name:    "idea",
				Pattern: `(?i)\b(?:idea|what if|brainstorm)\b`,
				Folder:  FolderIdeas,
			},
		},
	}
}

// LoadConfig reads classification rules from a YAML file. Fields absent
// from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier rules: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse classifier rules: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults backfills zero-valued fields so a partial YAML file still
// yields a usable classifier.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if c.DefaultFolder == "" {
		c.DefaultFolder = defaults.DefaultFolder
	}
	if len(c.CategoryFolders) == 0 {
		c.CategoryFolders = defaults.CategoryFolders
	}
	if c.Heuristics == nil {
		c.Heuristics = defaults.Heuristics
	}
}
