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
	"regexp"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// heuristic is a compiled predicate+mapper pair evaluated in priority
// order when the enrichment category cannot be trusted.
type heuristic struct {
	name    string
	pattern *regexp.Regexp
	folder  string
}

// Classifier maps enrichment metadata and raw-text heuristics to a
// target vault folder. Classify is a pure function: identical inputs
// always yield identical decisions, and classification never fails —
// there is always a fallback folder.
type Classifier struct {
	threshold     float64
	folders       map[string]string
	heuristics    []heuristic
	defaultFolder string
}

// New compiles a classifier from configuration. Heuristic patterns are
// compiled up front so Classify itself cannot error.
func New(cfg *Config) (*Classifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.fillDefaults()

	heuristics := make([]heuristic, 0, len(cfg.Heuristics))
	for _, h := range cfg.Heuristics {
		pattern, err := regexp.Compile(h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("heuristic %q: %w", h.Name, err)
		}
		heuristics = append(heuristics, heuristic{
			name:    h.Name,
			pattern: pattern,
			folder:  h.Folder,
		})
	}

	return &Classifier{
		threshold:     cfg.ConfidenceThreshold,
		folders:       cfg.CategoryFolders,
		heuristics:    heuristics,
		defaultFolder: cfg.DefaultFolder,
	}, nil
}

// Classify decides the target folder for a content item.
//
// Decision order:
//  1. enrichment present with confidence at or above the threshold and a
//     mapped category: use the category -> folder table
//  2. ordered keyword/pattern heuristics against the raw text
//  3. the default catch-all folder
//
// Low confidence and absent enrichment take the same fallback path.
func (c *Classifier) Classify(text string, enrichment *core.EnrichmentResult) core.ClassificationDecision {
	if enrichment != nil && enrichment.Confidence >= c.threshold {
		if folder, ok := c.folders[enrichment.Category]; ok {
			return core.ClassificationDecision{
				TargetFolder: folder,
				Rationale: fmt.Sprintf("category %q (confidence %.2f)",
					enrichment.Category, enrichment.Confidence),
			}
		}
	}

	for _, h := range c.heuristics {
		if h.pattern.MatchString(text) {
			return core.ClassificationDecision{
				TargetFolder: h.folder,
				Rationale:    fmt.Sprintf("heuristic %q matched", h.name),
			}
		}
	}

	return core.ClassificationDecision{
		TargetFolder: c.defaultFolder,
		Rationale:    "no category or heuristic matched",
	}
}

// DefaultFolder returns the catch-all folder.
func (c *Classifier) DefaultFolder() string {
	return c.defaultFolder
}
