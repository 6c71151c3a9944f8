package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
)

// Guideline pages without any of these keywords are discarded at build time,
// trading recall for precision.
var targetSections = []string{
	"treatment", "therapy", "systemic", "surgery",
	"radiation", "follow-up", "monitoring",
	"diagnosis", "pathology", "recurrence",
}

type Chunk struct {
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Vector []float32 `json:"vector"`
}

type artifact struct {
	CancerType string  `json:"cancer_type"`
	Dim        int     `json:"dim"`
	Chunks     []Chunk `json:"chunks"`
}

// IndexManager owns one vector index per cancer type. Indices are built from
// pre-extracted guideline text on first access and memoized; concurrent
// first-accesses for the same type are single-flighted through a per-type
// mutex so the build runs at most once.
type IndexManager struct {
	guidelineDir string
	indexDir     string
	embedder     Embedder

	mu      sync.Mutex
	loaded  map[string]*artifact
	perType map[string]*sync.Mutex
}

func NewIndexManager(guidelineDir, indexDir string, embedder Embedder) *IndexManager {
	return &IndexManager{
		guidelineDir: guidelineDir,
		indexDir:     indexDir,
		embedder:     embedder,
		loaded:       make(map[string]*artifact),
		perType:      make(map[string]*sync.Mutex),
	}
}

// Search returns the k nearest chunks by L2 distance, ascending. A cancer
// type whose corpus yields no chunks returns an empty slice, never an error:
// index absence degrades retrieval, it does not fail the pipeline.
func (m *IndexManager) Search(ctx context.Context, cancerType, query string, k int) ([]Chunk, []float64, error) {
	art, err := m.ensure(ctx, cancerType)
	if err != nil {
		return nil, nil, err
	}
	if art == nil || len(art.Chunks) == 0 {
		return nil, nil, nil
	}

	vectors, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil, errors.New("embedder returned no query vector")
	}
	queryVec := vectors[0]

	type scored struct {
		idx  int
		dist float64
	}
	distances := make([]scored, 0, len(art.Chunks))
	for i, chunk := range art.Chunks {
		distances = append(distances, scored{idx: i, dist: l2Distance(queryVec, chunk.Vector)})
	}
	sort.Slice(distances, func(i, j int) bool { return distances[i].dist < distances[j].dist })

	if k <= 0 || k > len(distances) {
		k = len(distances)
	}

	chunks := make([]Chunk, 0, k)
	scores := make([]float64, 0, k)
	for _, s := range distances[:k] {
		chunks = append(chunks, art.Chunks[s.idx])
		scores = append(scores, s.dist)
	}
	return chunks, scores, nil
}

// ensure loads or builds the index for a cancer type exactly once.
func (m *IndexManager) ensure(ctx context.Context, cancerType string) (*artifact, error) {
	cancerType = strings.ToLower(strings.TrimSpace(cancerType))
	if cancerType == "" {
		return nil, errors.New("cancer type required")
	}

	m.mu.Lock()
	if art, ok := m.loaded[cancerType]; ok {
		m.mu.Unlock()
		return art, nil
	}
	lock, ok := m.perType[cancerType]
	if !ok {
		lock = &sync.Mutex{}
		m.perType[cancerType] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Another request may have finished the build while we waited.
	m.mu.Lock()
	if art, ok := m.loaded[cancerType]; ok {
		m.mu.Unlock()
		return art, nil
	}
	m.mu.Unlock()

	art, err := m.loadArtifact(cancerType)
	if err != nil {
		logger.WithComponent("rag").WithField("cancer_type", cancerType).Info("No index found, building now")
		art, err = m.Build(ctx, cancerType)
		if err != nil {
			logger.WithComponent("rag").WithError(err).WithField("cancer_type", cancerType).Warn("index build failed")
			// Memoize the empty artifact: a failed corpus does not improve
			// by rebuilding on every request.
			art = &artifact{CancerType: cancerType}
		}
	}

	m.mu.Lock()
	m.loaded[cancerType] = art
	m.mu.Unlock()
	return art, nil
}

func (m *IndexManager) loadArtifact(cancerType string) (*artifact, error) {
	path := filepath.Join(m.indexDir, cancerType+"_index.json")
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var art artifact
	if err := json.Unmarshal(content, &art); err != nil {
		return nil, err
	}
	return &art, nil
}

// Build chunks the guideline corpus for a cancer type, embeds the kept
// chunks, and persists the artifact. Exposed for the batch index builder.
func (m *IndexManager) Build(ctx context.Context, cancerType string) (*artifact, error) {
	folder := filepath.Join(m.guidelineDir, cancerType)
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading guideline folder: %w", err)
	}

	var texts []string
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") && !strings.HasSuffix(name, ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(folder, name))
		if err != nil {
			logger.WithComponent("rag").WithError(err).WithField("file", name).Warn("skipping unreadable guideline file")
			continue
		}
		for _, page := range splitPages(string(content)) {
			if keepChunk(page) {
				texts = append(texts, page)
				sources = append(sources, name)
			}
		}
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("no indexable chunks for %s", cancerType)
	}

	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(texts), err)
	}

	art := &artifact{CancerType: cancerType}
	for i, text := range texts {
		art.Chunks = append(art.Chunks, Chunk{Text: text, Source: sources[i], Vector: vectors[i]})
	}
	if len(vectors) > 0 {
		art.Dim = len(vectors[0])
	}

	if err := m.saveArtifact(art); err != nil {
		logger.WithComponent("rag").WithError(err).WithField("cancer_type", cancerType).Warn("failed to persist index artifact")
	}

	logger.WithComponent("rag").WithFields(map[string]interface{}{
		"cancer_type": cancerType,
		"chunks":      len(art.Chunks),
	}).Info("index built")

	return art, nil
}

func (m *IndexManager) saveArtifact(art *artifact) error {
	if err := os.MkdirAll(m.indexDir, 0o755); err != nil {
		return err
	}
	content, err := json.Marshal(art)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.indexDir, art.CancerType+"_index.json"), content, 0o644)
}

// splitPages treats a blank-line separated block as one logical page.
func splitPages(content string) []string {
	var pages []string
	for _, block := range strings.Split(content, "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}
	return pages
}

func keepChunk(text string) bool {
	lowered := strings.ToLower(text)
	for _, key := range targetSections {
		if strings.Contains(lowered, key) {
			return true
		}
	}
	return false
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
