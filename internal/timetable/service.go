package timetable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"coursefit-backend/internal/extraction"
	"coursefit-backend/internal/shared/storage/object"
	"coursefit-backend/internal/shared/telemetry"
)

const timetableKind = "timetables"

var allowedImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ErrUnsupportedFile is returned for timetable uploads that are not
// images.
var ErrUnsupportedFile = errors.New("unsupported file type")

// UploadResult is one processed timetable upload.
type UploadResult struct {
	StorageKey string
	Lectures   []extraction.Lecture
}

// Service reads weekly timetables out of uploaded screenshots.
type Service struct {
	Store     object.ObjectStore
	Extractor extraction.Extractor
}

// UploadTimetable archives the image and extracts its lecture grid.
func (s *Service) UploadTimetable(ctx context.Context, fileName string, data []byte) (UploadResult, error) {
	key, _, mimeType, err := s.Store.Save(ctx, timetableKind, fileName, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("archive timetable: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if !allowedImageMimes[normalized] {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, normalized)
	}

	lectures, err := s.Extractor.ExtractTimetable(ctx, data, normalized)
	if err != nil {
		return UploadResult{}, fmt.Errorf("extract timetable: %w", err)
	}

	telemetry.Info("timetable processed", map[string]any{
		"storageKey": key,
		"lectures":   len(lectures),
	})
	return UploadResult{StorageKey: key, Lectures: lectures}, nil
}
