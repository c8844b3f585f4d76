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


package core

import (
	"fmt"
	"time"
)

// ValidateContentItem validates a ContentItem according to domain rules.
//
// Validation rules:
//   - Text must not be empty after whitespace normalization
//   - ReceivedAt must not be in the future
//
// NOT validated:
//   - Text length bounds (enforced by the pipeline, which degrades
//     oversized items rather than rejecting them)
//   - Attachments and SourceContext (optional)
func ValidateContentItem(item *ContentItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidContentItem)
	}

	if NormalizeText(item.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentItem, ErrEmptyContent)
	}

	if !item.ReceivedAt.IsZero() && !IsValidTimestamp(item.ReceivedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidContentItem, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEnrichmentResult validates an EnrichmentResult according to
// domain rules. Only the confidence range is checked; all other fields
// may be empty (the note template defines fallbacks for each).
func ValidateEnrichmentResult(result *EnrichmentResult) error {
	if result == nil {
		return nil
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("%w: value %v", ErrInvalidConfidence, result.Confidence)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
