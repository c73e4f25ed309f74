// Package analysis scores reviews against entity descriptions and flags the ones that do not fit.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/reviewcheck/internal/embedding"
	"github.com/hyperjump/reviewcheck/internal/models"
	"github.com/hyperjump/reviewcheck/internal/vector"
	"github.com/hyperjump/reviewcheck/pkg/utils"
	"go.uber.org/zap"
)

// DefaultThreshold is the similarity below which a review needs checking.
const DefaultThreshold = 0.75

// EntitySource resolves entities and their registered reviews.
type EntitySource interface {
	Entity(id string) (*models.Entity, bool)
	Reviews(id string) models.ReviewSet
}

// Analyzer embeds entity and review texts and compares them by cosine similarity.
// The threshold is fixed at construction so every decision of a process uses the same value.
type Analyzer struct {
	source    EntitySource
	embedder  embedding.Embedder
	threshold float64
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. embedder is usually a CachedEmbedder so repeated
// texts do not reach the provider again.
func NewAnalyzer(source EntitySource, embedder embedding.Embedder, threshold float64, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		source:    source,
		embedder:  embedder,
		threshold: threshold,
		logger:    utils.OrNop(logger),
	}
}

// Threshold returns the similarity threshold applied to every review.
func (a *Analyzer) Threshold() float64 {
	return a.threshold
}

// AnalyzeEntity scores all registered reviews of the entity with id.
// It stops at the first failure and returns no partial report.
func (a *Analyzer) AnalyzeEntity(ctx context.Context, id string) (*models.AnalysisReport, error) {
	entity, ok := a.source.Entity(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}
	start := time.Now()
	report := &models.AnalysisReport{
		ID:         uuid.NewString(),
		Entity:     entity,
		EntityText: EntityText(entity),
		Threshold:  a.threshold,
	}
	a.logger.Debug("analyzing entity", zap.String("analysis_id", report.ID), zap.String("entity_id", id))

	entityVec, err := a.embedder.Embed(ctx, report.EntityText)
	if err != nil {
		return nil, fmt.Errorf("embed entity %s: %w", id, err)
	}
	reviews := a.source.Reviews(id)
	if report.NormalReviews, err = a.scoreAll(ctx, id, entityVec, reviews.Normal); err != nil {
		return nil, fmt.Errorf("normal reviews: %w", err)
	}
	if report.AnomalousReviews, err = a.scoreAll(ctx, id, entityVec, reviews.Anomalous); err != nil {
		return nil, fmt.Errorf("anomalous reviews: %w", err)
	}

	a.logger.Debug("entity analyzed",
		zap.String("analysis_id", report.ID),
		zap.String("entity_id", id),
		zap.Int("normal", len(report.NormalReviews)),
		zap.Int("anomalous", len(report.AnomalousReviews)),
		zap.Int("needs_check", models.NeedsCheckCount(report.NormalReviews)+models.NeedsCheckCount(report.AnomalousReviews)),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// AnalyzeCustomReview scores one caller-supplied review against an entity.
func (a *Analyzer) AnalyzeCustomReview(ctx context.Context, req *models.CustomReviewRequest) (*models.CustomReviewReport, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	entity, ok := a.source.Entity(req.EntityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, req.EntityID)
	}
	entityVec, err := a.embedder.Embed(ctx, EntityText(entity))
	if err != nil {
		return nil, fmt.Errorf("embed entity %s: %w", req.EntityID, err)
	}
	result, err := a.score(ctx, req.EntityID, entityVec, req.ReviewText)
	if err != nil {
		return nil, err
	}
	return &models.CustomReviewReport{Entity: entity, SimilarityResult: result}, nil
}

func (a *Analyzer) scoreAll(ctx context.Context, entityID string, entityVec []float32, reviews []string) ([]models.SimilarityResult, error) {
	results := make([]models.SimilarityResult, 0, len(reviews))
	for i, review := range reviews {
		r, err := a.score(ctx, entityID, entityVec, review)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (a *Analyzer) score(ctx context.Context, entityID string, entityVec []float32, review string) (models.SimilarityResult, error) {
	reviewVec, err := a.embedder.Embed(ctx, review)
	if err != nil {
		return models.SimilarityResult{}, fmt.Errorf("embed review: %w", err)
	}
	sim, err := vector.Cosine(entityVec, reviewVec)
	if err != nil {
		return models.SimilarityResult{}, fmt.Errorf("similarity: %w", err)
	}
	return models.SimilarityResult{
		EntityID:   entityID,
		Review:     review,
		Similarity: sim,
		NeedsCheck: sim < a.threshold,
		Threshold:  a.threshold,
	}, nil
}

// IsClientError reports whether err was caused by the caller's input
// (unknown entity or invalid request) rather than by the provider or the numbers.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrInvalidRequest)
}
