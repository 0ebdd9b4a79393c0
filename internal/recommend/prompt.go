package recommend

import (
	"fmt"
	"strings"

	"coursefit-backend/internal/courses"
	"coursefit-backend/internal/vector"
)

const (
	// Documents are trimmed before prompting so a few long syllabi do
	// not crowd out the rest of the candidate pool.
	docTruncateRunes = 300

	maxHistoryLines    = 10
	maxRecommendations = 3
)

// BuildRefineQueryPrompt asks the model to turn the seed topic and a
// first pass of retrieved documents into a sharper search query.
func BuildRefineQueryPrompt(topic, grade, targetLabel string, docs []vector.Document, history []courses.Course) string {
	var b strings.Builder
	b.WriteString("학생이 관심 있는 주제: ")
	b.WriteString(topic)
	if strings.TrimSpace(grade) != "" {
		b.WriteString("\n해당 과목 성적: ")
		b.WriteString(grade)
	}
	b.WriteString("\n찾는 강의 유형: ")
	b.WriteString(targetLabel)
	b.WriteString("\n\n")

	if len(docs) > 0 {
		b.WriteString("관련 강의 자료:\n")
		writeDocs(&b, docs)
		b.WriteString("\n")
	}
	writeHistory(&b, history)

	b.WriteString("위 정보를 바탕으로, 이 학생에게 맞는 강의를 찾기 위한 검색 질의를 한 줄로 만들어주세요.\n")
	b.WriteString("검색 질의만 출력하고 다른 설명은 붙이지 마세요.")
	return b.String()
}

// BuildFinalPrompt asks the model to rank the candidate pool and
// return structured recommendations.
func BuildFinalPrompt(req Request, targetLabel string, docs []vector.Document, history []courses.Course) string {
	var b strings.Builder
	b.WriteString("학생 정보:\n")
	b.WriteString("- 관심 과목: ")
	b.WriteString(req.Course)
	b.WriteString("\n")
	if strings.TrimSpace(req.Grade) != "" {
		fmt.Fprintf(&b, "- 해당 과목 성적: %s\n", req.Grade)
	}
	fmt.Fprintf(&b, "- 찾는 강의 유형: %s\n", targetLabel)
	if gpa, ok := gpaSummary(history); ok {
		fmt.Fprintf(&b, "- 전체 평점 평균: %.2f / 4.5\n", gpa)
	}
	b.WriteString("\n")

	writeHistory(&b, history)

	b.WriteString("추천 후보 강의 목록:\n")
	writeDocs(&b, docs)
	b.WriteString("\n")

	fmt.Fprintf(&b, "위 후보 목록에서 이 학생에게 가장 적합한 강의를 최대 %d개 추천해주세요.\n", maxRecommendations)
	b.WriteString("규칙:\n")
	b.WriteString("- 반드시 후보 목록에 있는 courseId만 사용하세요.\n")
	b.WriteString("- 이미 수강한 과목은 추천하지 마세요.\n")
	b.WriteString("- 각 추천에 한국어로 추천 이유를 한두 문장으로 적어주세요.\n\n")
	b.WriteString("응답은 반드시 다음 형식의 JSON 객체로 반환해주세요:\n")
	b.WriteString(`{"recommendations": [{"courseId": "...", "title": "...", "reason": "...", "similarity": 0.95}]}`)
	return b.String()
}

func writeDocs(b *strings.Builder, docs []vector.Document) {
	for i, doc := range docs {
		fmt.Fprintf(b, "[Doc%d] courseId=%s title=%s\n%s\n", i, doc.Meta.CourseID, doc.Meta.Title, truncateRunes(doc.Content, docTruncateRunes))
	}
}

func writeHistory(b *strings.Builder, history []courses.Course) {
	if len(history) == 0 {
		return
	}
	b.WriteString("이미 수강한 과목:\n")
	for i, course := range history {
		if i == maxHistoryLines {
			fmt.Fprintf(b, "... 외 %d과목\n", len(history)-maxHistoryLines)
			break
		}
		fmt.Fprintf(b, "- %s (%s, 성적 %s)\n", course.Title, course.Category.Label(), course.Grade)
	}
	b.WriteString("\n")
}

// gpaSummary averages grade points over courses that carry them; P and
// low letter grades have no point value and are left out.
func gpaSummary(history []courses.Course) (float64, bool) {
	var sum float64
	var count int
	for _, course := range history {
		points := course.Grade.Points()
		if points == 0 {
			continue
		}
		sum += points
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// truncateRunes cuts by runes so Korean text is never split
// mid-character. The ellipsis counts against the budget, keeping the
// result at n runes or fewer.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
