package courses

import "context"

// Repo persists the student's course history.
type Repo interface {
	// GetOrCreateDepartment resolves a department code to its row ID,
	// creating the department when it does not exist yet.
	GetOrCreateDepartment(ctx context.Context, code string) (int64, error)
	// Upsert inserts or updates a course keyed by (departmentID, courseCode).
	Upsert(ctx context.Context, course Course) (Course, error)
	// History returns every recorded course.
	History(ctx context.Context) ([]Course, error)
	// HistoryByCategory returns the recorded courses in the given category.
	HistoryByCategory(ctx context.Context, category Category) ([]Course, error)
	// HighGradeHistory returns courses with grade A+ or A.
	HighGradeHistory(ctx context.Context) ([]Course, error)
}
