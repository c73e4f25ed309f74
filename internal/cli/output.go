// Package cli renders analysis results for the reviewcheck command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/reviewcheck/internal/models"
	"github.com/hyperjump/reviewcheck/pkg/utils"
)

// OutputFormat is the format for result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// reviewWidth bounds review text in batch listings.
const reviewWidth = 80

// ParseOutputFormat accepts "text" or "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteReport writes a batch analysis report to w in the given format.
func WriteReport(w io.Writer, report *models.AnalysisReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%s (%s)\n", report.Entity.Name, report.Entity.ID)
	fmt.Fprintf(w, "threshold: %.2f\n", report.Threshold)
	fmt.Fprintln(w, "\n--- Normal reviews ---")
	for _, r := range report.NormalReviews {
		fmt.Fprintln(w, FormatResult(r, reviewWidth))
	}
	fmt.Fprintln(w, "\n--- Anomalous reviews ---")
	for _, r := range report.AnomalousReviews {
		fmt.Fprintln(w, FormatResult(r, reviewWidth))
	}
	flagged := models.NeedsCheckCount(report.NormalReviews) + models.NeedsCheckCount(report.AnomalousReviews)
	total := len(report.NormalReviews) + len(report.AnomalousReviews)
	fmt.Fprintf(w, "\n%d of %d reviews need checking\n", flagged, total)
	return nil
}

// WriteCustomReport writes a single-review check to w in the given format.
func WriteCustomReport(w io.Writer, report *models.CustomReviewReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%s (%s)\n", report.Entity.Name, report.Entity.ID)
	fmt.Fprintf(w, "threshold: %.2f\n", report.Threshold)
	fmt.Fprintln(w, FormatResult(report.SimilarityResult, 0))
	return nil
}

// WriteEntities writes the entity listing to w in the given format.
func WriteEntities(w io.Writer, entities []*models.Entity, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, entities)
	}
	for _, e := range entities {
		fmt.Fprintf(w, "%-12s %s  [%s]\n", e.ID, e.Name, strings.Join(e.Features, ", "))
	}
	return nil
}

// FormatResult renders one result as "[CHECK] 0.6123  review text".
// maxLen truncates the review; 0 keeps it whole.
func FormatResult(r models.SimilarityResult, maxLen int) string {
	status := "[OK]   "
	if r.NeedsCheck {
		status = "[CHECK]"
	}
	return fmt.Sprintf("%s %.4f  %s", status, r.Similarity, utils.Truncate(r.Review, maxLen))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
