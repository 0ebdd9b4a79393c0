package courses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"coursefit-backend/internal/extraction"
	"coursefit-backend/internal/shared/metrics"
	"coursefit-backend/internal/shared/storage/object"
	"coursefit-backend/internal/shared/telemetry"
)

const (
	mimePDF        = "application/pdf"
	transcriptKind = "transcripts"
)

var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ErrUnsupportedFile is returned for uploads that are neither an image
// nor a PDF.
var ErrUnsupportedFile = errors.New("unsupported file type")

// UploadResult summarizes one processed transcript upload.
type UploadResult struct {
	StorageKey string
	Saved      []Course
	Skipped    int
}

// Service ingests transcript uploads into the course history.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Extractor extraction.Extractor
}

// UploadTranscript archives the upload, extracts its course rows, and
// upserts them into the history. Rows that fail to parse are skipped
// so one unreadable line does not lose the rest of the transcript.
func (s *Service) UploadTranscript(ctx context.Context, fileName string, data []byte) (UploadResult, error) {
	key, _, mimeType, err := s.Store.Save(ctx, transcriptKind, fileName, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("archive transcript: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	var extracted []extraction.Course
	switch {
	case normalized == mimePDF:
		text, err := extraction.TextFromPDF(data)
		if err != nil {
			return UploadResult{}, fmt.Errorf("read pdf: %w", err)
		}
		extracted, err = s.Extractor.ExtractTranscriptText(ctx, text)
		if err != nil {
			return UploadResult{}, fmt.Errorf("extract transcript: %w", err)
		}
	case allowedImageMimes[normalized]:
		extracted, err = s.Extractor.ExtractTranscript(ctx, data, normalized)
		if err != nil {
			return UploadResult{}, fmt.Errorf("extract transcript: %w", err)
		}
	default:
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, normalized)
	}

	result := UploadResult{StorageKey: key}
	for _, row := range extracted {
		course, err := s.saveRow(ctx, row)
		if err != nil {
			result.Skipped++
			telemetry.Warn("transcript row skipped", map[string]any{
				"courseCode": row.CourseCode,
				"err":        err.Error(),
			})
			continue
		}
		result.Saved = append(result.Saved, course)
	}

	metrics.IncTranscriptUploads()
	telemetry.Info("transcript processed", map[string]any{
		"storageKey": key,
		"saved":      len(result.Saved),
		"skipped":    result.Skipped,
	})
	return result, nil
}

func (s *Service) saveRow(ctx context.Context, row extraction.Course) (Course, error) {
	grade, err := ParseGrade(row.Grade)
	if err != nil {
		return Course{}, err
	}
	deptCode, err := DepartmentFromCode(row.CourseCode)
	if err != nil {
		return Course{}, err
	}
	deptID, err := s.Repo.GetOrCreateDepartment(ctx, deptCode)
	if err != nil {
		return Course{}, err
	}
	return s.Repo.Upsert(ctx, Course{
		DepartmentID: deptID,
		CourseCode:   strings.ToUpper(strings.TrimSpace(row.CourseCode)),
		Title:        row.Title,
		Grade:        grade,
		Category:     CategoryForTarget(row.Category),
	})
}
