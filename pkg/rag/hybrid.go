package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

// HybridRetriever concatenates guideline-index matches with literature
// matches. The two provenance classes are not deduplicated or re-ranked
// against each other; callers get every local match plus every literature
// match with provenance preserved.
type HybridRetriever struct {
	local   *LocalRetriever
	online  *PubMedClient
	kLocal  int
	kOnline int
}

func NewHybridRetriever(local *LocalRetriever, online *PubMedClient, kLocal, kOnline int) *HybridRetriever {
	if kLocal <= 0 {
		kLocal = 5
	}
	if kOnline <= 0 {
		kOnline = 3
	}
	return &HybridRetriever{local: local, online: online, kLocal: kLocal, kOnline: kOnline}
}

// Retrieve runs both retrievers concurrently; each degrades independently.
// Local results are re-tagged with the cancer-scoped guideline label.
func (h *HybridRetriever) Retrieve(ctx context.Context, cancerType, query string, variants []string) []models.EvidenceItem {
	var wg sync.WaitGroup
	var localResults, onlineResults []models.EvidenceItem

	wg.Add(2)
	go func() {
		defer wg.Done()
		localResults = h.local.Retrieve(ctx, cancerType, query, h.kLocal)
	}()
	go func() {
		defer wg.Done()
		onlineResults = h.online.Retrieve(ctx, variants, h.kOnline)
	}()
	wg.Wait()

	label := fmt.Sprintf("NCCN-%s", cancerType)
	combined := make([]models.EvidenceItem, 0, len(localResults)+len(onlineResults))
	for _, item := range localResults {
		item.Source = label
		combined = append(combined, item)
	}
	combined = append(combined, onlineResults...)
	return combined
}
