package recommend

import (
	"fmt"
	"strings"
	"testing"

	"coursefit-backend/internal/courses"
	"coursefit-backend/internal/vector"
)

func TestBuildFinalPromptIncludesDocsAndRules(t *testing.T) {
	docs := []vector.Document{
		{Content: strings.Repeat("가", 500), Meta: vector.Metadata{CourseID: "101", Title: "알고리즘", Type: "전공"}},
		{Content: "짧은 설명", Meta: vector.Metadata{CourseID: "102", Title: "운영체제", Type: "전공"}},
	}
	history := []courses.Course{
		{Title: "자료구조", Grade: courses.GradeAPlus, Category: courses.CategoryMajor},
		{Title: "미적분학", Grade: courses.GradeB, Category: courses.CategoryGeneral},
	}

	prompt := BuildFinalPrompt(Request{Course: "알고리즘", Grade: "A", TargetType: "전공"}, "전공", docs, history)

	if !strings.Contains(prompt, "[Doc0] courseId=101") || !strings.Contains(prompt, "[Doc1] courseId=102") {
		t.Fatal("expected zero-based document labels")
	}
	if strings.Contains(prompt, strings.Repeat("가", 298)) {
		t.Fatal("long documents should be truncated")
	}
	if !strings.Contains(prompt, "자료구조") || !strings.Contains(prompt, "이미 수강한 과목") {
		t.Fatal("expected history section")
	}
	if !strings.Contains(prompt, "courseId만 사용") {
		t.Fatal("expected candidate-only rule")
	}
	// GPA over A+ (4.5) and B (3.0).
	if !strings.Contains(prompt, "3.75") {
		t.Fatalf("expected GPA summary in prompt:\n%s", prompt)
	}
}

func TestBuildFinalPromptCapsHistoryLines(t *testing.T) {
	var history []courses.Course
	for i := 0; i < 15; i++ {
		history = append(history, courses.Course{
			Title:    fmt.Sprintf("과목%d", i),
			Grade:    courses.GradeA,
			Category: courses.CategoryMajor,
		})
	}
	prompt := BuildFinalPrompt(Request{Course: "x", TargetType: "전공"}, "전공", nil, history)

	if !strings.Contains(prompt, "과목9") {
		t.Fatal("expected first ten history lines")
	}
	if strings.Contains(prompt, "과목10 ") || strings.Contains(prompt, "- 과목12") {
		t.Fatal("history beyond ten lines should be summarized")
	}
	if !strings.Contains(prompt, "외 5과목") {
		t.Fatal("expected overflow summary line")
	}
}

func TestBuildRefineQueryPrompt(t *testing.T) {
	docs := []vector.Document{{Content: "머신러닝 개론 강의", Meta: vector.Metadata{CourseID: "9", Title: "머신러닝"}}}
	prompt := BuildRefineQueryPrompt("데이터 분석", "A+", "교양", docs, nil)

	if !strings.Contains(prompt, "데이터 분석") || !strings.Contains(prompt, "교양") {
		t.Fatal("expected topic and target label")
	}
	if !strings.Contains(prompt, "성적: A+") {
		t.Fatal("expected the student's grade in the prompt")
	}
	if !strings.Contains(prompt, "머신러닝 개론 강의") {
		t.Fatal("expected retrieved document content")
	}
	if !strings.Contains(prompt, "검색 질의만 출력") {
		t.Fatal("expected single-line output instruction")
	}

	noGrade := BuildRefineQueryPrompt("데이터 분석", "  ", "교양", docs, nil)
	if strings.Contains(noGrade, "성적") {
		t.Fatal("blank grade must not produce a grade line")
	}
}

func TestTruncateRunesStaysWithinBudget(t *testing.T) {
	long := strings.Repeat("가", 500)
	got := truncateRunes(long, docTruncateRunes)
	if n := len([]rune(got)); n != docTruncateRunes {
		t.Fatalf("expected exactly %d runes, got %d", docTruncateRunes, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatal("expected ellipsis marker on truncated content")
	}

	short := "짧은 설명"
	if truncateRunes(short, docTruncateRunes) != short {
		t.Fatal("short content must pass through unchanged")
	}
}

func TestGpaSummary(t *testing.T) {
	history := []courses.Course{
		{Grade: courses.GradeAPlus},
		{Grade: courses.GradeB},
		{Grade: courses.GradeP},
		{Grade: courses.GradeF},
	}
	gpa, ok := gpaSummary(history)
	if !ok {
		t.Fatal("expected GPA to be computed")
	}
	if gpa != 3.75 {
		t.Fatalf("expected 3.75, got %f", gpa)
	}

	if _, ok := gpaSummary([]courses.Course{{Grade: courses.GradeP}}); ok {
		t.Fatal("P-only history has no GPA")
	}
}
