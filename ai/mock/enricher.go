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


package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kenvexar/discord-obsidian-memo-bot/ai"
	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// MockEnricher is a test double for ai.Enricher.
// It allows custom behavior injection via a function field and records
// call counts for assertions.
type MockEnricher struct {
	// EnrichFunc is called by Enrich if set.
	// If nil, a simple keyword-derived result is returned.
	EnrichFunc func(ctx context.Context, text, sourceContext string) (*core.EnrichmentResult, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.Enricher = (*MockEnricher)(nil)

// NewMockEnricher creates a mock enricher with default behavior.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// Enrich returns a deterministic mock result derived from the text.
func (m *MockEnricher) Enrich(ctx context.Context, text, sourceContext string) (*core.EnrichmentResult, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, text, sourceContext)
	}

	words := strings.Fields(strings.ToLower(text))
	tags := make([]string, 0, 3)
	for i, word := range words {
		if i >= 3 {
			break
		}
		tags = append(tags, word)
	}

	return &core.EnrichmentResult{
		Summary:    "Mock summary: " + core.NormalizeText(text),
		Tags:       tags,
		Category:   "other",
		Confidence: 0.5,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// CallCount returns how many times Enrich has been called.
func (m *MockEnricher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
