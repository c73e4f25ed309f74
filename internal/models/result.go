package models

// SimilarityResult is the score of one review against one entity.
type SimilarityResult struct {
	EntityID   string  `json:"entity_id"`
	Review     string  `json:"review"`
	Similarity float64 `json:"similarity"`
	// NeedsCheck is true when Similarity is strictly below Threshold.
	NeedsCheck bool    `json:"needs_check"`
	Threshold  float64 `json:"threshold"`
}

// AnalysisReport is the result of scoring all registered reviews of an entity.
// NormalReviews and AnomalousReviews keep the order of the catalog.
type AnalysisReport struct {
	ID               string             `json:"id"`
	Entity           *Entity            `json:"entity"`
	EntityText       string             `json:"entity_text"`
	NormalReviews    []SimilarityResult `json:"normal_reviews"`
	AnomalousReviews []SimilarityResult `json:"anomalous_reviews"`
	Threshold        float64            `json:"threshold"`
}

// CustomReviewRequest asks to score a caller-supplied review against an entity.
type CustomReviewRequest struct {
	EntityID   string `json:"entity_id"`
	ReviewText string `json:"review_text"`
}

// CustomReviewReport is the result of scoring a single custom review.
type CustomReviewReport struct {
	Entity *Entity `json:"entity"`
	SimilarityResult
}

// NeedsCheckCount returns how many results in rs are flagged.
func NeedsCheckCount(rs []SimilarityResult) int {
	n := 0
	for _, r := range rs {
		if r.NeedsCheck {
			n++
		}
	}
	return n
}
