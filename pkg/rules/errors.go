package rules

import "fmt"

// UnsupportedCancerError is terminal for a request: the cancer type has no
// knowledge base entry, so retrieval and generation are never attempted.
type UnsupportedCancerError struct {
	CancerType string
}

func (e UnsupportedCancerError) Error() string {
	return fmt.Sprintf("cancer type '%s' not supported", e.CancerType)
}

// UnsupportedStageError is terminal: the cancer type is known but the
// resolved stage has no rule entry.
type UnsupportedStageError struct {
	CancerType string
	Stage      string
}

func (e UnsupportedStageError) Error() string {
	return fmt.Sprintf("no treatment rules found for stage '%s' in %s", e.Stage, e.CancerType)
}
