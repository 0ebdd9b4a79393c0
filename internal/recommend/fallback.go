package recommend

import "coursefit-backend/internal/vector"

const (
	// fallbackSimilarity marks deterministic picks so clients can tell
	// them apart from model-ranked results.
	fallbackSimilarity = 0.8

	fallbackReason = "검색 결과에서 유사도가 높은 강의입니다."

	// genericReason stands in when the model picks a course but writes
	// no justification for it.
	genericReason = "수강 이력과 관심 주제에 맞는 강의입니다."
)

// fallbackRecommendations ranks candidates by retrieval order when the
// model cannot. Taken courses are still excluded.
func fallbackRecommendations(docs []vector.Document, taken map[string]bool) []RecommendedCourse {
	out := make([]RecommendedCourse, 0, maxRecommendations)
	for _, doc := range docs {
		if doc.Meta.CourseID == "" {
			continue
		}
		if taken[doc.Meta.CourseID] || taken[doc.Meta.Title] {
			continue
		}
		title := doc.Meta.Title
		if title == "" {
			title = doc.Meta.CourseID
		}
		out = append(out, RecommendedCourse{
			CourseID:   doc.Meta.CourseID,
			Title:      title,
			Reason:     fallbackReason,
			Similarity: fallbackSimilarity,
			Metadata:   map[string]string{"source": "fallback"},
		})
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}
