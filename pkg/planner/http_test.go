package planner

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/oncoplan-ai/platform/pkg/common/models"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	NewHandler(newOfflineService(t), nil, 1<<20).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRecommendEndpoint(t *testing.T) {
	router := newTestRouter(t)

	recorder := postJSON(t, router, "/api/v1/recommend", `{"patient":{"cancer_type":"lung","stage":"I"}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response models.RecommendResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if response.Origin != models.OriginDerived {
		t.Fatalf("expected derived origin, got %q", response.Origin)
	}
	if response.Plan.PrimaryTreatment == "" {
		t.Fatal("response missing primary treatment")
	}
}

func TestRecommendEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"patient":{}}`, http.StatusBadRequest},
		{`{"patient":{"cancer_type":"prostate"}}`, http.StatusBadRequest},
		{`{"patient":{"cancer_type":"breast","stage":"IX"}}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		recorder := postJSON(t, router, "/api/v1/recommend", tc.body)
		if recorder.Code != tc.want {
			t.Fatalf("body %q: expected %d, got %d: %s", tc.body, tc.want, recorder.Code, recorder.Body.String())
		}
	}
}

func TestOutcomesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	recorder := postJSON(t, router, "/api/v1/outcomes", `{"patient":{"cancer_type":"lung","stage":"IV","age":70,"kps":80}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response models.OutcomeResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if response.Outcome.OverallSurvival.MedianMonths <= 0 {
		t.Fatalf("expected survival projection, got %+v", response.Outcome)
	}
}

func TestGetPlanWithoutStorage(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/some-id", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d", recorder.Code)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "oncoplan_recommendations_served_total") {
		t.Fatal("metrics exposition missing counters")
	}
}
