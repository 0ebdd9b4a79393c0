package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubEmbedder struct {
	lastInput string
	fail      bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.lastInput = text
	if s.fail {
		return nil, context.DeadlineExceeded
	}
	return []float32{0.1, 0.2}, nil
}

func newChromaServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/collections/courses") {
			json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "courses"})
			return
		}
		handle(w, r)
	}))
}

func TestInitialSearchAppendsQuerySuffix(t *testing.T) {
	srv := newChromaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{"COSE10100"}},
			"documents": [][]string{{"doc one"}},
			"metadatas": [][]map[string]any{{{"course_id": float64(7), "course_name": "자료구조"}}},
			"distances": [][]float64{{0.25}},
		})
	})
	defer srv.Close()

	emb := &stubEmbedder{}
	g := NewChromaGateway(srv.URL, "courses", emb)

	docs := g.InitialSearch(context.Background(), "알고리즘")
	if !strings.HasPrefix(emb.lastInput, "알고리즘") || !strings.Contains(emb.lastInput, "강의계획서") {
		t.Fatalf("unexpected embed input %q", emb.lastInput)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Meta.CourseID != "7" {
		t.Fatalf("expected numeric course_id coerced to string, got %q", docs[0].Meta.CourseID)
	}
	if docs[0].Meta.Title != "자료구조" {
		t.Fatalf("expected course_name as title, got %q", docs[0].Meta.Title)
	}
	if docs[0].Content != "doc one" {
		t.Fatalf("unexpected content %q", docs[0].Content)
	}
}

func TestDocumentIDBackstopsMissingMetadata(t *testing.T) {
	srv := newChromaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{"COSE33100"}},
			"documents": [][]string{{"syllabus text"}},
			"distances": [][]float64{{0.1}},
		})
	})
	defer srv.Close()

	g := NewChromaGateway(srv.URL, "courses", &stubEmbedder{})
	docs := g.InitialSearch(context.Background(), "자료구조")

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Meta.CourseID != "COSE33100" {
		t.Fatalf("expected document ID as courseId, got %q", docs[0].Meta.CourseID)
	}
	if docs[0].Meta.Title != "COSE33100" {
		t.Fatalf("expected courseId as title when no name is stored, got %q", docs[0].Meta.Title)
	}
}

func TestFinalSearchSendsNoMetadataFilter(t *testing.T) {
	var gotBody map[string]any
	srv := newChromaServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{}},
			"documents": [][]string{{}},
		})
	})
	defer srv.Close()

	g := NewChromaGateway(srv.URL, "courses", &stubEmbedder{})
	g.FinalSearch(context.Background(), "refined query", "전공")

	// The index stores no category metadata; a type filter would
	// guarantee zero hits.
	if _, ok := gotBody["where"]; ok {
		t.Fatalf("final search must not send a where filter, got %v", gotBody["where"])
	}
	if gotBody["n_results"] != float64(10) {
		t.Fatalf("expected top-10 query, got %v", gotBody["n_results"])
	}
}

func TestFindSimilarCoursesExcludesSourceAndHistory(t *testing.T) {
	var gotGetWhere map[string]any
	srv := newChromaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/get") {
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			gotGetWhere, _ = req["where"].(map[string]any)
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.5, 0.5}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{"10", "11", "12"}},
			"documents": [][]string{{"a", "b", "c"}},
			"metadatas": [][]map[string]any{{
				{"course_id": "10", "course_name": "t10"},
				{"course_id": "11", "course_name": "t11"},
				{"course_id": "12", "course_name": "t12"},
			}},
			"distances": [][]float64{{0.0, 0.1, 0.2}},
		})
	})
	defer srv.Close()

	g := NewChromaGateway(srv.URL, "courses", &stubEmbedder{})
	got := g.FindSimilarCourses(context.Background(), "10", SimilarOptions{
		Limit:            5,
		ExcludeCourseIDs: []string{"11"},
	})

	if gotGetWhere == nil || gotGetWhere["course_id"] != "10" {
		t.Fatalf("expected seed lookup by course_id metadata, got %v", gotGetWhere)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 result after exclusions, got %d", len(got))
	}
	if got[0].Meta.CourseID != "12" {
		t.Fatalf("expected course 12, got %q", got[0].Meta.CourseID)
	}
	if got[0].Similarity < 0.79 || got[0].Similarity > 0.81 {
		t.Fatalf("expected similarity 0.8, got %f", got[0].Similarity)
	}
}

func TestSearchFailuresReturnEmpty(t *testing.T) {
	srv := newChromaServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	g := NewChromaGateway(srv.URL, "courses", &stubEmbedder{})
	if docs := g.FinalSearch(context.Background(), "q", "교양"); docs != nil {
		t.Fatalf("expected nil on store failure, got %v", docs)
	}

	embFail := NewChromaGateway(srv.URL, "courses", &stubEmbedder{fail: true})
	if docs := embFail.InitialSearch(context.Background(), "q"); docs != nil {
		t.Fatalf("expected nil on embed failure, got %v", docs)
	}
}

func TestSimilarityClamped(t *testing.T) {
	res := &queryResult{
		Documents: [][]string{{"far", "close"}},
		Distances: [][]float64{{1.7, -0.2}},
	}
	docs := res.scoredDocuments()
	if docs[0].Similarity != 0 {
		t.Fatalf("expected clamp to 0, got %f", docs[0].Similarity)
	}
	if docs[1].Similarity != 1 {
		t.Fatalf("expected clamp to 1, got %f", docs[1].Similarity)
	}
}
