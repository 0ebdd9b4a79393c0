package courses

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Grade is a letter grade on the 10-value university scale.
type Grade string

const (
	GradeAPlus Grade = "A_PLUS"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B_PLUS"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C_PLUS"
	GradeC     Grade = "C"
	GradeDPlus Grade = "D_PLUS"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
	GradeP     Grade = "P"
)

var gradeByLetter = map[string]Grade{
	"A+": GradeAPlus,
	"A":  GradeA,
	"B+": GradeBPlus,
	"B":  GradeB,
	"C+": GradeCPlus,
	"C":  GradeC,
	"D+": GradeDPlus,
	"D":  GradeD,
	"F":  GradeF,
	"P":  GradeP,
}

// ParseGrade converts a transcript letter grade ("A+", "B", "P", ...) to a Grade.
func ParseGrade(raw string) (Grade, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	grade, ok := gradeByLetter[normalized]
	if !ok {
		return "", fmt.Errorf("invalid grade %q (allowed: A+, A, B+, B, C+, C, D+, D, F, P)", raw)
	}
	return grade, nil
}

// retrievalWeights orders grades for seed selection. P is pass/fail and has
// no ordinal meaning; it gets a neutral weight.
var retrievalWeights = map[Grade]float64{
	GradeAPlus: 1.0,
	GradeA:     0.9,
	GradeBPlus: 0.8,
	GradeB:     0.7,
	GradeCPlus: 0.6,
	GradeC:     0.5,
	GradeDPlus: 0.4,
	GradeD:     0.3,
	GradeF:     0.1,
	GradeP:     0.5,
}

// Weight returns the retrieval weight for the grade, 0 for unknown values.
func (g Grade) Weight() float64 {
	return retrievalWeights[g]
}

// Points returns the grade-point value used for GPA summaries.
func (g Grade) Points() float64 {
	switch g {
	case GradeAPlus:
		return 4.5
	case GradeA:
		return 4.0
	case GradeBPlus:
		return 3.5
	case GradeB:
		return 3.0
	default:
		return 0
	}
}

// IsHigh reports whether the grade counts as a high grade for seeding
// recommendations.
func (g Grade) IsHigh() bool {
	return g == GradeAPlus || g == GradeA
}

// Category classifies a course as general education or major coursework.
type Category string

const (
	CategoryGeneral Category = "General"
	CategoryMajor   Category = "Major"
)

// CategoryForTarget maps a request targetType label to a Category. The
// general-education labels ("교양", "General") map to General; every other
// value maps to Major.
func CategoryForTarget(targetType string) Category {
	switch strings.TrimSpace(targetType) {
	case "교양", "General", "general", "GENERAL":
		return CategoryGeneral
	default:
		return CategoryMajor
	}
}

// Label returns the Korean display label for the category.
func (c Category) Label() string {
	if c == CategoryGeneral {
		return "교양"
	}
	return "전공"
}

// Course is one completed course on the student's transcript.
type Course struct {
	ID           int64
	DepartmentID int64
	CourseCode   string
	Title        string
	Grade        Grade
	Category     Category
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DepartmentFromCode extracts the department prefix from a course code,
// e.g. "CS101" -> "CS".
func DepartmentFromCode(courseCode string) (string, error) {
	code := strings.TrimSpace(courseCode)
	var b strings.Builder
	for _, r := range code {
		if !unicode.IsLetter(r) {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("course code %q has no department prefix", courseCode)
	}
	return b.String(), nil
}
