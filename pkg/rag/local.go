package rag

import (
	"context"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
)

// LocalRetriever answers nearest-neighbor queries against the per-cancer
// guideline indices.
type LocalRetriever struct {
	indices *IndexManager
}

func NewLocalRetriever(indices *IndexManager) *LocalRetriever {
	return &LocalRetriever{indices: indices}
}

// Retrieve returns up to k evidence items ordered by ascending distance.
// Index problems degrade to an empty list; local retrieval never fails the
// request.
func (r *LocalRetriever) Retrieve(ctx context.Context, cancerType, query string, k int) []models.EvidenceItem {
	chunks, scores, err := r.indices.Search(ctx, cancerType, query, k)
	if err != nil {
		logger.WithComponent("rag").WithError(err).WithField("cancer_type", cancerType).Warn("local retrieval failed")
		return nil
	}

	items := make([]models.EvidenceItem, 0, len(chunks))
	for i, chunk := range chunks {
		items = append(items, models.EvidenceItem{
			Text:   chunk.Text,
			Source: chunk.Source,
			Score:  scores[i],
		})
	}
	return items
}
