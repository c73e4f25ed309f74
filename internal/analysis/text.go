package analysis

import (
	"strings"

	"github.com/hyperjump/reviewcheck/internal/models"
)

// EntityText renders e as "{name}. {description} Features: {f1, f2, ...}".
// The output is stable because cached embeddings are keyed by it.
func EntityText(e *models.Entity) string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString(". ")
	b.WriteString(e.Description)
	b.WriteString(" Features: ")
	b.WriteString(strings.Join(e.Features, ", "))
	return b.String()
}
