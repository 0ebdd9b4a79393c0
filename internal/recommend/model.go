package recommend

// Request is the recommendation input: the course or topic the student
// is interested in, their grade in it if taken, and whether they want
// general-education or major suggestions.
type Request struct {
	Course     string `json:"course"`
	Grade      string `json:"grade"`
	TargetType string `json:"targetType"`
}

// RecommendedCourse is one ranked suggestion. CourseID always refers
// to a course that came back from the candidate search; the service
// never emits IDs the store did not return.
type RecommendedCourse struct {
	CourseID   string            `json:"courseId"`
	Title      string            `json:"title"`
	Reason     string            `json:"reason"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Response carries up to three recommendations. An empty list is a
// valid outcome, not an error.
type Response struct {
	Recommendations []RecommendedCourse `json:"recommendations"`
}
