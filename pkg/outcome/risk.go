package outcome

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// Weights define a logistic model over named clinical features. The score is
// used as the confidence attached to heuristically derived outcomes.
type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

type Artifact struct {
	Model struct {
		Type         string   `json:"type"`
		FeatureNames []string `json:"feature_names"`
		Weights      Weights  `json:"weights"`
	} `json:"model"`
}

// RiskScorer loads a calibration artifact from disk when present and falls
// back to built-in weights otherwise. Artifacts are cached by modification
// time so a recalibrated file is picked up without a restart.
type RiskScorer struct {
	dir   string
	cache map[string]cachedArtifact
	mu    sync.RWMutex
}

type cachedArtifact struct {
	artifact Artifact
	modTime  int64
}

func NewRiskScorer(dir string) *RiskScorer {
	return &RiskScorer{
		dir:   dir,
		cache: make(map[string]cachedArtifact),
	}
}

// Score evaluates the named model on the feature map. Missing artifact files
// fall back to default tolerance weights; missing features are an error
// because silently zeroing a clinical input skews the score.
func (s *RiskScorer) Score(model string, features map[string]float64) (float64, error) {
	artifact, err := s.loadArtifact(model)
	if err != nil {
		artifact = defaultArtifact()
	}

	names := artifact.Model.FeatureNames
	if len(names) == 0 {
		return 0, fmt.Errorf("artifact for %s missing feature names", model)
	}

	sample := make([]float64, len(names))
	for idx, name := range names {
		value, ok := features[name]
		if !ok {
			return 0, fmt.Errorf("missing feature %s", name)
		}
		sample[idx] = value
	}

	return Predict(artifact.Model.Weights, sample), nil
}

func (s *RiskScorer) loadArtifact(model string) (Artifact, error) {
	latest := filepath.Join(s.dir, fmt.Sprintf("%s_latest.json", model))
	info, err := os.Stat(latest)
	if err != nil {
		return Artifact{}, err
	}
	mod := info.ModTime().UnixNano()

	s.mu.RLock()
	cached, ok := s.cache[model]
	s.mu.RUnlock()
	if ok && cached.modTime == mod {
		return cached.artifact, nil
	}

	content, err := os.ReadFile(latest)
	if err != nil {
		return Artifact{}, err
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return Artifact{}, err
	}
	s.mu.Lock()
	s.cache[model] = cachedArtifact{artifact: artifact, modTime: mod}
	s.mu.Unlock()
	return artifact, nil
}

// defaultArtifact encodes treatment-tolerance weights over normalized age,
// KPS and ECOG. Higher output means better expected tolerance.
func defaultArtifact() Artifact {
	var artifact Artifact
	artifact.Model.Type = "logistic"
	artifact.Model.FeatureNames = []string{"age_norm", "kps_norm", "ecog"}
	artifact.Model.Weights = Weights{
		Bias:         0.4,
		Coefficients: []float64{-1.2, 2.1, -0.9},
	}
	return artifact
}

func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

type TrainOptions struct {
	Epochs       int
	LearningRate float64
}

type TrainMetrics struct {
	Loss     float64
	Accuracy float64
}

// Train fits logistic weights by batch gradient descent. Used offline to
// recalibrate the tolerance model from labeled outcome records.
func Train(samples [][]float64, labels []float64, opts TrainOptions) (Weights, TrainMetrics) {
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.01
	}

	n := len(samples)
	if n == 0 {
		return Weights{}, TrainMetrics{}
	}
	featureCount := len(samples[0])
	weights := make([]float64, featureCount)
	var bias float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		grad := make([]float64, featureCount)
		var biasGrad float64
		for i, sample := range samples {
			prediction := sigmoid(dot(weights, sample) + bias)
			diff := prediction - labels[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += diff * sample[j]
			}
			biasGrad += diff
		}
		for j := 0; j < featureCount; j++ {
			weights[j] -= opts.LearningRate * grad[j] / float64(n)
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	loss, accuracy := evaluate(weights, bias, samples, labels)
	return Weights{Bias: bias, Coefficients: weights}, TrainMetrics{Loss: loss, Accuracy: accuracy}
}

func dot(weights []float64, sample []float64) float64 {
	n := len(weights)
	if len(sample) < n {
		n = len(sample)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func evaluate(weights []float64, bias float64, samples [][]float64, labels []float64) (float64, float64) {
	var loss float64
	var correct int
	for i, sample := range samples {
		prediction := sigmoid(dot(weights, sample) + bias)
		loss += -labels[i]*math.Log(prediction+1e-9) - (1-labels[i])*math.Log(1-prediction+1e-9)
		if (prediction >= 0.5 && labels[i] == 1) || (prediction < 0.5 && labels[i] == 0) {
			correct++
		}
	}
	loss /= float64(len(samples))
	accuracy := float64(correct) / float64(len(samples))
	return loss, accuracy
}
