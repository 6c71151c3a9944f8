package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
)

// ErrDegenerate marks a model response that is unusable: too short, not
// parseable, or missing the primary treatment. Callers switch to the derived
// plan on this error.
var ErrDegenerate = errors.New("degenerate model response")

// Generator produces plan text through an OpenAI-compatible chat completions
// endpoint. An empty API key disables generation entirely so offline
// deployments always take the derived path.
type Generator struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	minLen    int
	client    *http.Client
}

func NewGenerator(apiKey, baseURL, model string, maxTokens, minLen int, timeout time.Duration) *Generator {
	if maxTokens <= 0 {
		maxTokens = 240
	}
	if minLen <= 0 {
		minLen = 70
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		minLen:    minLen,
		client:    &http.Client{Timeout: timeout},
	}
}

// GeneratePlan builds the plan prompt, calls the model and parses the first
// JSON object out of the reply. Every failure mode returns ErrDegenerate
// (wrapped) rather than a hard error.
func (g *Generator) GeneratePlan(ctx context.Context, patient models.PatientRecord, rules models.RulesResult, evidence []models.EvidenceItem) (models.PlanResult, error) {
	text, err := g.complete(ctx, buildPlanPrompt(patient, rules, evidence))
	if err != nil {
		return models.PlanResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if len(text) < g.minLen {
		return models.PlanResult{}, fmt.Errorf("%w: reply too short (%d chars)", ErrDegenerate, len(text))
	}

	raw, ok := extractJSON(text)
	if !ok {
		return models.PlanResult{}, fmt.Errorf("%w: no JSON object in reply", ErrDegenerate)
	}

	var plan models.PlanResult
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return models.PlanResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if strings.TrimSpace(plan.PrimaryTreatment) == "" {
		return models.PlanResult{}, fmt.Errorf("%w: missing primary treatment", ErrDegenerate)
	}
	return plan, nil
}

// GenerateOutcomes is the outcomes counterpart of GeneratePlan.
func (g *Generator) GenerateOutcomes(ctx context.Context, patient models.PatientRecord, evidence []models.EvidenceItem) (models.OutcomeResult, error) {
	text, err := g.complete(ctx, buildOutcomePrompt(patient, evidence))
	if err != nil {
		return models.OutcomeResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if len(text) < g.minLen {
		return models.OutcomeResult{}, fmt.Errorf("%w: reply too short (%d chars)", ErrDegenerate, len(text))
	}

	raw, ok := extractJSON(text)
	if !ok {
		return models.OutcomeResult{}, fmt.Errorf("%w: no JSON object in reply", ErrDegenerate)
	}

	var outcome models.OutcomeResult
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		return models.OutcomeResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if outcome.OverallSurvival.MedianMonths <= 0 {
		return models.OutcomeResult{}, fmt.Errorf("%w: missing survival estimate", ErrDegenerate)
	}
	return outcome, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("generation disabled, no API key configured")
	}

	payload := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  g.maxTokens,
		"temperature": 0,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		logger.WithComponent("planner").WithField("status", resp.StatusCode).Warn("model endpoint returned non-200")
		return "", fmt.Errorf("model endpoint status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty choices in model response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// extractJSON returns the first balanced top-level JSON object in text.
// Braces inside JSON strings are skipped.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
