package ai

// Categories defines the valid values for the category field of an
// enrichment result. The enricher instructs the model to pick exactly
// one; anything else is mapped to "other" during parsing.
var Categories = []string{
	"work",
	"learning",
	"project",
	"life",
	"idea",
	"finance",
	"task",
	"health",
	"other",
}

// IsKnownCategory reports whether category is one of Categories.
func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
