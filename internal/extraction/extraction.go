package extraction

import (
	"context"
	"errors"
)

// ErrNoContent is returned when the model produced no usable rows.
var ErrNoContent = errors.New("no content extracted")

// Course is one transcript row as read from an uploaded image or PDF.
type Course struct {
	Title      string
	CourseCode string
	Grade      string
	Category   string
}

// Lecture is one timetable entry as read from an uploaded image.
type Lecture struct {
	Name      string
	Room      string
	Days      []string
	StartTime string
	EndTime   string
}

// Extractor turns uploaded transcripts and timetables into structured rows.
type Extractor interface {
	ExtractTranscript(ctx context.Context, image []byte, mimeType string) ([]Course, error)
	ExtractTranscriptText(ctx context.Context, text string) ([]Course, error)
	ExtractTimetable(ctx context.Context, image []byte, mimeType string) ([]Lecture, error)
}
