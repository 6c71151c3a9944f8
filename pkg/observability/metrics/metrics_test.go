package metrics

import (
	"bufio"
	"fmt"
	"strings"
	"testing"
)

func TestWritePrometheusExposition(t *testing.T) {
	IncRecommendation()
	IncDerivedPlan()

	var sb strings.Builder
	WritePrometheus(&sb)
	exposition := sb.String()

	if strings.Contains(exposition, "%!") {
		t.Fatalf("exposition contains formatting errors:\n%s", exposition)
	}
	if !strings.Contains(exposition, "# TYPE oncoplan_recommendations_served_total counter") {
		t.Fatalf("missing TYPE line:\n%s", exposition)
	}

	scanner := bufio.NewScanner(strings.NewReader(exposition))
	samples := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		samples++
		var name string
		var value int64
		if _, err := fmt.Sscanf(line, "%s %d", &name, &value); err != nil {
			t.Fatalf("unscrapeable sample line %q: %v", line, err)
		}
		if !strings.HasPrefix(name, "oncoplan_") {
			t.Fatalf("unexpected metric name %q", name)
		}
	}
	if samples < 7 {
		t.Fatalf("expected a sample line per counter, got %d", samples)
	}
}

func TestCountersAccumulate(t *testing.T) {
	var before strings.Builder
	WritePrometheus(&before)

	IncGenerationFailure()

	var after strings.Builder
	WritePrometheus(&after)

	if before.String() == after.String() {
		t.Fatal("incrementing a counter must change the exposition")
	}
}
