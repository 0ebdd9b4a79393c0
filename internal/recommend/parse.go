package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// defaultSimilarity is assumed when the model omits or mangles the
// similarity field.
const defaultSimilarity = 0.9

type flexString string

// UnmarshalJSON accepts both "12" and 12; the model is inconsistent
// about quoting IDs.
func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type rawRecommendation struct {
	CourseID   flexString `json:"courseId"`
	Title      string     `json:"title"`
	Reason     string     `json:"reason"`
	Similarity *float64   `json:"similarity"`
}

// parseRecommendations decodes the model's ranking output. A payload
// without a recommendations array is a parse failure; an empty array
// is a valid "nothing fits" answer.
func parseRecommendations(content string) ([]RecommendedCourse, error) {
	var parsed struct {
		Recommendations *[]rawRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("ranking parse: %w", err)
	}
	if parsed.Recommendations == nil {
		return nil, fmt.Errorf("ranking parse: missing recommendations array")
	}

	out := make([]RecommendedCourse, 0, len(*parsed.Recommendations))
	for _, raw := range *parsed.Recommendations {
		similarity := defaultSimilarity
		if raw.Similarity != nil {
			similarity = clamp01(*raw.Similarity)
		}
		out = append(out, RecommendedCourse{
			CourseID:   strings.TrimSpace(string(raw.CourseID)),
			Title:      strings.TrimSpace(raw.Title),
			Reason:     strings.TrimSpace(raw.Reason),
			Similarity: similarity,
		})
	}
	return out, nil
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
