package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"coursefit-backend/internal/shared/telemetry"
)

const (
	// Appended to the topic so the initial lookup pulls syllabus and
	// review style documents rather than bare titles.
	initialQuerySuffix = " 강의계획서 강의평 특징"

	initialLimit = 3
	finalLimit   = 10
)

// ChromaGateway implements Gateway against the Chroma REST API.
type ChromaGateway struct {
	baseURL    string
	collection string
	embedder   Embedder
	httpClient *http.Client

	mu           sync.Mutex
	collectionID string
}

func NewChromaGateway(baseURL, collection string, embedder Embedder) *ChromaGateway {
	return &ChromaGateway{
		baseURL:    baseURL,
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *ChromaGateway) InitialSearch(ctx context.Context, topic string) []Document {
	embedding, err := g.embedder.Embed(ctx, topic+initialQuerySuffix)
	if err != nil {
		telemetry.Warn("vector initial search embed failed", map[string]any{"err": err.Error()})
		return nil
	}
	res, err := g.query(ctx, embedding, initialLimit, nil)
	if err != nil {
		telemetry.Warn("vector initial search failed", map[string]any{"err": err.Error()})
		return nil
	}
	scored := res.scoredDocuments()
	docs := make([]Document, 0, len(scored))
	for _, d := range scored {
		docs = append(docs, d.Document)
	}
	return docs
}

// FinalSearch retrieves the final candidate pool for the refined
// query. The index carries no category metadata, so targetType is not
// pushed down as a filter; category handling stays in the prompt and
// validation layers.
func (g *ChromaGateway) FinalSearch(ctx context.Context, query, targetType string) []Document {
	embedding, err := g.embedder.Embed(ctx, query)
	if err != nil {
		telemetry.Warn("vector final search embed failed", map[string]any{"err": err.Error(), "targetType": targetType})
		return nil
	}
	res, err := g.query(ctx, embedding, finalLimit, nil)
	if err != nil {
		telemetry.Warn("vector final search failed", map[string]any{"err": err.Error(), "targetType": targetType})
		return nil
	}
	scored := res.scoredDocuments()
	docs := make([]Document, 0, len(scored))
	for _, d := range scored {
		docs = append(docs, d.Document)
	}
	return docs
}

func (g *ChromaGateway) FindSimilarCourses(ctx context.Context, courseID string, opts SimilarOptions) []ScoredDocument {
	if opts.Limit <= 0 {
		opts.Limit = finalLimit
	}
	embedding, err := g.courseEmbedding(ctx, courseID)
	if err != nil {
		telemetry.Warn("vector similar lookup failed", map[string]any{"courseId": courseID, "err": err.Error()})
		return nil
	}

	// Over-fetch so excluded courses and the source course itself do
	// not eat into the requested limit. opts.Category is not pushed
	// down for the same reason FinalSearch sends no filter: the index
	// has no category key.
	n := opts.Limit + len(opts.ExcludeCourseIDs) + 1
	res, err := g.query(ctx, embedding, n, nil)
	if err != nil {
		telemetry.Warn("vector similar query failed", map[string]any{"courseId": courseID, "err": err.Error()})
		return nil
	}

	excluded := make(map[string]bool, len(opts.ExcludeCourseIDs)+1)
	excluded[courseID] = true
	for _, id := range opts.ExcludeCourseIDs {
		excluded[id] = true
	}

	var out []ScoredDocument
	for _, doc := range res.scoredDocuments() {
		if excluded[doc.Meta.CourseID] {
			continue
		}
		out = append(out, doc)
		if len(out) == opts.Limit {
			break
		}
	}
	return out
}

func (g *ChromaGateway) resolveCollectionID(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.collectionID != "" {
		return g.collectionID, nil
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s", g.baseURL, g.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chroma collection lookup: status %d", resp.StatusCode)
	}

	var parsed struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("chroma collection parse: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("chroma collection %q missing id", g.collection)
	}
	g.collectionID = parsed.ID
	return parsed.ID, nil
}

type queryResult struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

func (g *ChromaGateway) query(ctx context.Context, embedding []float32, n int, where map[string]any) (*queryResult, error) {
	collectionID, err := g.resolveCollectionID(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"query_embeddings": [][]float32{embedding},
		"n_results":        n,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	if where != nil {
		reqBody["where"] = where
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", g.baseURL, collectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chroma query: status %d", resp.StatusCode)
	}

	var parsed queryResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("chroma query parse: %w", err)
	}
	return &parsed, nil
}

func (g *ChromaGateway) courseEmbedding(ctx context.Context, courseID string) ([]float32, error) {
	collectionID, err := g.resolveCollectionID(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"where":   map[string]any{"course_id": courseID},
		"include": []string{"embeddings"},
		"limit":   1,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/get", g.baseURL, collectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chroma get: status %d", resp.StatusCode)
	}

	var parsed struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("chroma get parse: %w", err)
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("course %s has no stored vector", courseID)
	}
	return parsed.Embeddings[0], nil
}

// scoredDocuments decodes one query's hits. The index stores course_id
// and course_name metadata with the course code doubling as the
// document ID, so the ID backstops a missing course_id and the code
// backstops a missing name.
func (r *queryResult) scoredDocuments() []ScoredDocument {
	if r == nil || len(r.Documents) == 0 {
		return nil
	}
	docs := r.Documents[0]
	var ids []string
	if len(r.IDs) > 0 {
		ids = r.IDs[0]
	}
	var metas []map[string]any
	if len(r.Metadatas) > 0 {
		metas = r.Metadatas[0]
	}
	var dists []float64
	if len(r.Distances) > 0 {
		dists = r.Distances[0]
	}

	out := make([]ScoredDocument, 0, len(docs))
	for i, content := range docs {
		doc := ScoredDocument{Document: Document{Content: content}, Similarity: 1}
		var meta map[string]any
		if i < len(metas) {
			meta = metas[i]
		}
		courseID := metaString(meta, "course_id")
		if courseID == "" && i < len(ids) {
			courseID = ids[i]
		}
		title := metaString(meta, "course_name")
		if title == "" {
			title = metaString(meta, "title")
		}
		if title == "" {
			title = courseID
		}
		doc.Meta = Metadata{
			CourseID: courseID,
			Title:    title,
			Type:     metaString(meta, "type"),
		}
		if i < len(dists) {
			doc.Similarity = clamp01(1 - dists[i])
		}
		out = append(out, doc)
	}
	return out
}

// metaString tolerates numeric metadata values, which Chroma returns
// as JSON numbers.
func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ Gateway = (*ChromaGateway)(nil)
