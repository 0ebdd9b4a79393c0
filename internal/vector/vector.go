package vector

import "context"

// Metadata is the per-document payload stored alongside each course
// vector. CourseID identifies the catalog course the document
// describes; Type is the course category label ("교양" or "전공").
type Metadata struct {
	CourseID string
	Title    string
	Type     string
}

// Document is one retrieved course description.
type Document struct {
	Content string
	Meta    Metadata
}

// ScoredDocument is a document with its similarity to the query,
// normalized to [0, 1].
type ScoredDocument struct {
	Document
	Similarity float64
}

// SimilarOptions controls similarity-only lookups.
type SimilarOptions struct {
	Limit            int
	ExcludeCourseIDs []string
	Category         string
}

// Gateway retrieves course documents from the vector store. Lookups
// never fail from the caller's point of view: any store or embedding
// error is logged and surfaces as an empty result.
type Gateway interface {
	// InitialSearch returns a small candidate set for the topic,
	// used to ground the query-refinement prompt.
	InitialSearch(ctx context.Context, topic string) []Document
	// FinalSearch returns the candidate pool for ranking, filtered
	// to the requested category label.
	FinalSearch(ctx context.Context, query, targetType string) []Document
	// FindSimilarCourses returns courses whose vectors are closest
	// to the given course's own vector.
	FindSimilarCourses(ctx context.Context, courseID string, opts SimilarOptions) []ScoredDocument
}
