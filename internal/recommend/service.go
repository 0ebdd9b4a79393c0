package recommend

import (
	"context"
	"sort"
	"strings"
	"time"

	"coursefit-backend/internal/courses"
	"coursefit-backend/internal/llm"
	"coursefit-backend/internal/shared/metrics"
	"coursefit-backend/internal/shared/telemetry"
	"coursefit-backend/internal/vector"
)

// Service runs the recommendation pipeline: retrieve candidates,
// refine the query with the model, retrieve the final pool, then let
// the model rank it. The pipeline degrades instead of failing: model
// trouble falls back to retrieval order, store trouble yields an
// empty response.
type Service struct {
	Repo   courses.Repo
	LLM    llm.Client
	Vector vector.Gateway
	Cache  *Cache
}

// Recommend never returns an error; callers always get a well-formed
// response, possibly empty.
func (s *Service) Recommend(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	metrics.IncRecommendStarted()
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("recommend panicked", map[string]any{"panic": r})
			resp = Response{}
		}
		if resp.Recommendations == nil {
			resp.Recommendations = []RecommendedCourse{}
		}
		if len(resp.Recommendations) == 0 {
			metrics.IncRecommendEmpty()
		}
		metrics.IncRecommendCompleted()
		metrics.ObserveRecommendDurationMs(float64(time.Since(start).Milliseconds()))
	}()

	if cached, ok := s.Cache.Get(ctx, req); ok {
		return cached
	}

	category := courses.CategoryForTarget(req.TargetType)
	label := category.Label()
	history := s.loadHistory(ctx)
	taken := excludeSet(history)

	topic := s.seedTopic(ctx, req, category)
	initial := s.Vector.InitialSearch(ctx, topic)
	if len(initial) == 0 {
		telemetry.Info("no initial candidates for topic", map[string]any{"topic": topic})
		return Response{}
	}

	query := topic
	if refined, err := s.LLM.Ask(ctx, BuildRefineQueryPrompt(topic, req.Grade, label, initial, history)); err != nil {
		telemetry.Warn("query refinement unavailable, using seed topic", map[string]any{"err": err.Error()})
	} else if cleaned := firstLine(refined); cleaned != "" {
		query = cleaned
	}

	docs := s.Vector.FinalSearch(ctx, query, label)
	if len(docs) == 0 {
		telemetry.Info("no candidates for query", map[string]any{"query": query, "targetType": label})
		return Response{}
	}

	resp = Response{Recommendations: s.rank(ctx, req, label, docs, history, taken)}
	s.Cache.Set(ctx, req, resp)
	return resp
}

func (s *Service) rank(ctx context.Context, req Request, label string, docs []vector.Document, history []courses.Course, taken map[string]bool) []RecommendedCourse {
	content, err := s.LLM.Ask(ctx, BuildFinalPrompt(req, label, docs, history))
	if err != nil {
		telemetry.Warn("ranking unavailable, serving fallback", map[string]any{"err": err.Error()})
		metrics.IncRecommendFallback()
		return fallbackRecommendations(docs, taken)
	}

	parsed, err := parseRecommendations(content)
	if err != nil {
		telemetry.Warn("ranking unparseable, serving fallback", map[string]any{"err": err.Error()})
		metrics.IncRecommendFallback()
		return fallbackRecommendations(docs, taken)
	}

	valid := validateRecommendations(parsed, docs, taken)
	if len(valid) == 0 {
		telemetry.Warn("ranking produced no valid entries, serving fallback", map[string]any{"parsed": len(parsed)})
		metrics.IncRecommendFallback()
		return fallbackRecommendations(docs, taken)
	}
	return valid
}

// validateRecommendations drops entries whose courseId is not in the
// candidate pool, entries for taken courses, and duplicates, capping
// the result at three.
func validateRecommendations(parsed []RecommendedCourse, docs []vector.Document, taken map[string]bool) []RecommendedCourse {
	byID := make(map[string]vector.Document, len(docs))
	for _, doc := range docs {
		if doc.Meta.CourseID != "" {
			byID[doc.Meta.CourseID] = doc
		}
	}

	seen := make(map[string]bool, maxRecommendations)
	out := make([]RecommendedCourse, 0, maxRecommendations)
	for _, rec := range parsed {
		doc, ok := byID[rec.CourseID]
		if !ok || seen[rec.CourseID] {
			continue
		}
		if rec.Title == "" {
			rec.Title = doc.Meta.Title
		}
		if rec.Title == "" {
			rec.Title = rec.CourseID
		}
		if rec.Reason == "" {
			rec.Reason = genericReason
		}
		if taken[rec.CourseID] || taken[rec.Title] || taken[doc.Meta.Title] {
			continue
		}
		seen[rec.CourseID] = true
		out = append(out, rec)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

// seedTopic joins the titles of the student's best courses in the
// target category; with no usable history the requested course is the
// topic.
func (s *Service) seedTopic(ctx context.Context, req Request, category courses.Category) string {
	high, err := s.Repo.HighGradeHistory(ctx)
	if err != nil {
		telemetry.Warn("high-grade history unavailable", map[string]any{"err": err.Error()})
		return req.Course
	}
	var seeds []courses.Course
	for _, course := range high {
		if course.Category == category {
			seeds = append(seeds, course)
		}
	}
	if len(seeds) == 0 {
		return req.Course
	}
	sort.SliceStable(seeds, func(i, j int) bool {
		return seeds[i].Grade.Weight() > seeds[j].Grade.Weight()
	})
	titles := make([]string, 0, len(seeds))
	for _, course := range seeds {
		titles = append(titles, course.Title)
	}
	return strings.Join(titles, ", ")
}

func (s *Service) loadHistory(ctx context.Context) []courses.Course {
	history, err := s.Repo.History(ctx)
	if err != nil {
		telemetry.Warn("course history unavailable", map[string]any{"err": err.Error()})
		return nil
	}
	return history
}

// excludeSet collects the course codes the student has already taken.
// Index document IDs are course codes, so codes are the primary key;
// titles ride along for documents whose metadata carries no code.
func excludeSet(history []courses.Course) map[string]bool {
	taken := make(map[string]bool, len(history)*2)
	for _, course := range history {
		if code := strings.TrimSpace(course.CourseCode); code != "" {
			taken[code] = true
		}
		if title := strings.TrimSpace(course.Title); title != "" {
			taken[title] = true
		}
	}
	return taken
}

// firstLine trims the refined query to a single line without wrapping
// quotes, which the model sometimes adds.
func firstLine(s string) string {
	line := strings.TrimSpace(s)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return strings.Trim(line, `"'`)
}
