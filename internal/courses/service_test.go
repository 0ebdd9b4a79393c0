package courses

import (
	"context"
	"errors"
	"io"
	"testing"

	"coursefit-backend/internal/extraction"
)

type stubStore struct {
	mimeType string
	saveErr  error
	lastKind string
}

func (s *stubStore) Save(_ context.Context, kind, fileName string, r io.Reader) (string, int64, string, error) {
	s.lastKind = kind
	if s.saveErr != nil {
		return "", 0, "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	return "stored/" + fileName, int64(len(data)), s.mimeType, nil
}

func (s *stubStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type stubExtractor struct {
	courses []extraction.Course
	err     error
}

func (s *stubExtractor) ExtractTranscript(context.Context, []byte, string) ([]extraction.Course, error) {
	return s.courses, s.err
}

func (s *stubExtractor) ExtractTranscriptText(context.Context, string) ([]extraction.Course, error) {
	return s.courses, s.err
}

func (s *stubExtractor) ExtractTimetable(context.Context, []byte, string) ([]extraction.Lecture, error) {
	return nil, errors.New("not implemented")
}

func TestUploadTranscriptSavesRows(t *testing.T) {
	store := &stubStore{mimeType: "image/png"}
	svc := &Service{
		Repo:  NewMemoryRepo(),
		Store: store,
		Extractor: &stubExtractor{courses: []extraction.Course{
			{Title: "자료구조", CourseCode: "cs201", Grade: "A+", Category: "전공"},
			{Title: "글쓰기", CourseCode: "GE101", Grade: "B", Category: "교양"},
		}},
	}

	result, err := svc.UploadTranscript(context.Background(), "transcript.png", []byte("img"))
	if err != nil {
		t.Fatalf("UploadTranscript: %v", err)
	}
	if store.lastKind != "transcripts" {
		t.Fatalf("expected archive under transcripts, got %q", store.lastKind)
	}
	if len(result.Saved) != 2 || result.Skipped != 0 {
		t.Fatalf("expected 2 saved rows, got %+v", result)
	}
	if result.Saved[0].CourseCode != "CS201" {
		t.Fatalf("expected uppercased course code, got %q", result.Saved[0].CourseCode)
	}
	if result.Saved[0].Category != CategoryMajor || result.Saved[1].Category != CategoryGeneral {
		t.Fatalf("unexpected categories %+v", result.Saved)
	}

	history, err := svc.Repo.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 persisted courses, got %d", len(history))
	}
}

func TestUploadTranscriptSkipsBadRows(t *testing.T) {
	svc := &Service{
		Repo:  NewMemoryRepo(),
		Store: &stubStore{mimeType: "image/jpeg"},
		Extractor: &stubExtractor{courses: []extraction.Course{
			{Title: "자료구조", CourseCode: "CS201", Grade: "A+", Category: "전공"},
			{Title: "이상한과목", CourseCode: "CS301", Grade: "Z", Category: "전공"},
			{Title: "번호없는과목", CourseCode: "123", Grade: "A", Category: "전공"},
		}},
	}

	result, err := svc.UploadTranscript(context.Background(), "transcript.jpg", []byte("img"))
	if err != nil {
		t.Fatalf("UploadTranscript: %v", err)
	}
	if len(result.Saved) != 1 || result.Skipped != 2 {
		t.Fatalf("expected 1 saved / 2 skipped, got %+v", result)
	}
}

func TestUploadTranscriptRejectsUnsupportedMime(t *testing.T) {
	svc := &Service{
		Repo:      NewMemoryRepo(),
		Store:     &stubStore{mimeType: "text/plain"},
		Extractor: &stubExtractor{},
	}

	_, err := svc.UploadTranscript(context.Background(), "notes.txt", []byte("hi"))
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestUploadTranscriptArchiveFailure(t *testing.T) {
	svc := &Service{
		Repo:      NewMemoryRepo(),
		Store:     &stubStore{saveErr: errors.New("disk full")},
		Extractor: &stubExtractor{},
	}

	if _, err := svc.UploadTranscript(context.Background(), "t.png", []byte("img")); err == nil {
		t.Fatal("expected error when archive fails")
	}
}

func TestUploadTranscriptUpsertsDuplicates(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:  repo,
		Store: &stubStore{mimeType: "image/png"},
		Extractor: &stubExtractor{courses: []extraction.Course{
			{Title: "자료구조", CourseCode: "CS201", Grade: "B", Category: "전공"},
		}},
	}
	if _, err := svc.UploadTranscript(context.Background(), "t.png", []byte("img")); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	svc.Extractor = &stubExtractor{courses: []extraction.Course{
		{Title: "자료구조", CourseCode: "CS201", Grade: "A+", Category: "전공"},
	}}
	if _, err := svc.UploadTranscript(context.Background(), "t.png", []byte("img")); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	history, err := repo.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected retake to upsert, got %d rows", len(history))
	}
	if history[0].Grade != GradeAPlus {
		t.Fatalf("expected grade updated to A_PLUS, got %s", history[0].Grade)
	}
}
