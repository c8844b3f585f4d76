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


package vault

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// maxTitleLen bounds the title derived from the first line of content.
const maxTitleLen = 80

// noteFields is the enumerated set of fields a note template recognizes.
// Every field has a defined fallback so a note rendered without
// enrichment (Degraded mode) is still a complete, schema-valid document.
type noteFields struct {
	ID          string
	Title       string
	Text        string
	Source      string
	Fingerprint core.Fingerprint
	CreatedAt   time.Time
	Attachments []core.AttachmentRef

	// AI-derived, all optional.
	AIProcessed bool
	Summary     string
	Tags        []string
	Category    string
	Confidence  float64
	Reasoning   string
}

// fieldsFor assembles the template fields for an item, applying the
// fallback values for every AI field when enrichment is absent.
func fieldsFor(item *core.ContentItem, enrichment *core.EnrichmentResult, now time.Time) noteFields {
	f := noteFields{
		ID:          item.ID,
		Title:       titleOf(item.Text),
		Text:        strings.TrimSpace(item.Text),
		Source:      item.SourceContext,
		Fingerprint: item.Fingerprint(),
		CreatedAt:   now,
		Attachments: item.Attachments,

		// Fallbacks: present and typed even without AI.
		AIProcessed: false,
		Summary:     "",
		Tags:        []string{},
		Category:    "",
		Confidence:  0,
	}

	if enrichment != nil {
		f.AIProcessed = true
		f.Summary = enrichment.Summary
		f.Tags = enrichment.Tags
		f.Category = enrichment.Category
		f.Confidence = enrichment.Confidence
		f.Reasoning = enrichment.Reasoning
	}
	return f
}

// titleOf derives a note title from the first line of content.
func titleOf(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if len(line) > maxTitleLen {
		line = strings.TrimSpace(line[:maxTitleLen])
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

// frontmatterOf builds the YAML frontmatter map. The enrichment result
// is denormalized here so cache loss never loses historical enrichment.
func frontmatterOf(f noteFields) map[string]any {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":           f.ID,
		"created":      f.CreatedAt.UTC().Format(time.RFC3339),
		"source":       f.Source,
		"fingerprint":  string(f.Fingerprint),
		"ai_processed": f.AIProcessed,
		"summary":      f.Summary,
		"tags":         tags,
		"category":     f.Category,
		"confidence":   f.Confidence,
	}
}

// renderNote produces the full Markdown document: YAML frontmatter
// between --- markers, then the body sections. Rendering is pure; given
// identical fields it yields identical text (yaml.Marshal sorts map
// keys).
func renderNote(f noteFields) (frontmatter map[string]any, body string, err error) {
	frontmatter = frontmatterOf(f)

	fm, err := yaml.Marshal(frontmatter)
	if err != nil {
		return nil, "", fmt.Errorf("render frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString("# " + f.Title + "\n\n")
	b.WriteString(f.Text + "\n")

	if f.Summary != "" {
		b.WriteString("\n## Summary\n\n" + f.Summary + "\n")
	}

	if len(f.Attachments) > 0 {
		b.WriteString("\n## Attachments\n\n")
		for _, a := range f.Attachments {
			name := a.Filename
			if name == "" {
				name = a.URL
			}
			b.WriteString(fmt.Sprintf("- [%s](%s)\n", name, a.URL))
		}
	}

	return frontmatter, b.String(), nil
}
