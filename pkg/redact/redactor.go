package redact

import (
	"regexp"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Redactor masks direct identifiers in free text before it leaves the
// process inside prompts or literature queries.
type Redactor struct {
	rules []compiledRule
}

func New(cfg RulesConfig) (*Redactor, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Redactor{rules: compiled}, nil
}

func (r *Redactor) Text(text string) string {
	if r == nil {
		return text
	}
	masked := text
	for _, rule := range r.rules {
		masked = rule.re.ReplaceAllString(masked, rule.rule.Mask)
	}
	return masked
}

// Record masks every string value in a patient record, leaving structure and
// non-string values untouched.
func (r *Redactor) Record(patient models.PatientRecord) models.PatientRecord {
	if r == nil {
		return patient
	}
	out := make(models.PatientRecord, len(patient))
	for key, value := range patient {
		if s, ok := value.(string); ok {
			out[key] = r.Text(s)
			continue
		}
		out[key] = value
	}
	return out
}
