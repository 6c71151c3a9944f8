package outcome

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func toleranceFeatures(age, kps, ecog float64) map[string]float64 {
	return map[string]float64{
		"age_norm": age / 100,
		"kps_norm": kps / 100,
		"ecog":     ecog,
	}
}

func TestScoreFallsBackToDefaultWeights(t *testing.T) {
	scorer := NewRiskScorer(t.TempDir())

	fit, err := scorer.Score("tolerance", toleranceFeatures(45, 95, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frail, err := scorer.Score("tolerance", toleranceFeatures(85, 40, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fit <= frail {
		t.Fatalf("fit patient must score higher tolerance: fit=%f frail=%f", fit, frail)
	}
	if fit < 0 || fit > 1 || frail < 0 || frail > 1 {
		t.Fatalf("scores out of [0,1]: fit=%f frail=%f", fit, frail)
	}
}

func TestScoreRejectsMissingFeature(t *testing.T) {
	scorer := NewRiskScorer(t.TempDir())
	_, err := scorer.Score("tolerance", map[string]float64{"age_norm": 0.5})
	if err == nil {
		t.Fatal("expected error for missing features")
	}
}

func TestScoreUsesArtifactFromDisk(t *testing.T) {
	dir := t.TempDir()
	var artifact Artifact
	artifact.Model.Type = "logistic"
	artifact.Model.FeatureNames = []string{"x"}
	artifact.Model.Weights = Weights{Bias: 0, Coefficients: []float64{10}}
	content, err := json.Marshal(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tolerance_latest.json"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	scorer := NewRiskScorer(dir)
	score, err := scorer.Score("tolerance", map[string]float64{"x": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1 / (1 + math.Exp(-10))
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected %f from disk artifact, got %f", want, score)
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	samples := [][]float64{
		{0.1}, {0.2}, {0.15}, {0.25},
		{0.8}, {0.9}, {0.85}, {0.95},
	}
	labels := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	weights, metrics := Train(samples, labels, TrainOptions{Epochs: 2000, LearningRate: 0.5})
	if metrics.Accuracy < 1 {
		t.Fatalf("expected separable data to train to full accuracy, got %f", metrics.Accuracy)
	}

	low := Predict(weights, []float64{0.1})
	high := Predict(weights, []float64{0.9})
	if low >= 0.5 || high < 0.5 {
		t.Fatalf("trained model misclassifies: low=%f high=%f", low, high)
	}
}

func TestTrainEmptyInput(t *testing.T) {
	weights, metrics := Train(nil, nil, TrainOptions{})
	if len(weights.Coefficients) != 0 || metrics.Accuracy != 0 {
		t.Fatalf("expected zero values for empty input, got %+v %+v", weights, metrics)
	}
}
