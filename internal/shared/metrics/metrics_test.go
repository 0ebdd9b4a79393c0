package metrics

import (
	"strings"
	"testing"
)

func TestRenderExposesCountersAndHistogram(t *testing.T) {
	IncRecommendStarted()
	IncRecommendFallback()
	IncTranscriptUploads()
	ObserveRecommendDurationMs(420)

	out := Render()
	for _, name := range []string{
		"recommend_started_total",
		"recommend_completed_total",
		"recommend_fallback_total",
		"recommend_empty_total",
		"transcript_uploads_total",
		"recommend_duration_ms_bucket",
		"recommend_duration_ms_sum",
		"recommend_duration_ms_count",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("render missing %s", name)
		}
	}
	if !strings.Contains(out, `le="+Inf"`) {
		t.Error("histogram missing +Inf bucket")
	}
}

func TestObserveClampsNegative(t *testing.T) {
	ObserveRecommendDurationMs(-5)
	if !strings.Contains(Render(), "recommend_duration_ms_count") {
		t.Fatal("expected histogram rendered")
	}
}
