package recommend

import (
	"context"
	"sort"
	"strings"
	"sync"

	"coursefit-backend/internal/courses"
	"coursefit-backend/internal/shared/telemetry"
	"coursefit-backend/internal/vector"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20

	similarWorkers = 4
)

// SimilarRequest asks for courses close to one or more seed courses,
// without involving the model. With no explicit seeds, the student's
// high-grade courses in the target category seed the lookup.
type SimilarRequest struct {
	CourseIDs  []string
	TargetType string
	Limit      int
}

// Similar fans out one vector lookup per seed course and merges the
// results, keeping each course's best similarity across seeds. Taken
// courses and the seeds themselves never appear in the output.
func (s *Service) Similar(ctx context.Context, req SimilarRequest) []RecommendedCourse {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	var label string
	if strings.TrimSpace(req.TargetType) != "" {
		label = courses.CategoryForTarget(req.TargetType).Label()
	}
	taken := excludeSet(s.loadHistory(ctx))

	seeds := req.CourseIDs
	if len(seeds) == 0 {
		seeds = s.historySeeds(ctx, req.TargetType)
	}

	var (
		mu   sync.Mutex
		best = make(map[string]vector.ScoredDocument)
		wg   sync.WaitGroup
		sem  = make(chan struct{}, similarWorkers)
	)
	for _, seed := range seeds {
		seed := seed
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			found := s.Vector.FindSimilarCourses(ctx, seed, vector.SimilarOptions{
				Limit:            limit,
				ExcludeCourseIDs: seeds,
				Category:         label,
			})
			mu.Lock()
			for _, doc := range found {
				if current, ok := best[doc.Meta.CourseID]; !ok || doc.Similarity > current.Similarity {
					best[doc.Meta.CourseID] = doc
				}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	merged := make([]vector.ScoredDocument, 0, len(best))
	for _, doc := range best {
		if taken[doc.Meta.CourseID] || taken[doc.Meta.Title] {
			continue
		}
		merged = append(merged, doc)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return merged[i].Meta.CourseID < merged[j].Meta.CourseID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	out := make([]RecommendedCourse, 0, len(merged))
	for _, doc := range merged {
		out = append(out, RecommendedCourse{
			CourseID:   doc.Meta.CourseID,
			Title:      doc.Meta.Title,
			Reason:     "수강한 과목과 유사한 강의입니다.",
			Similarity: doc.Similarity,
			Metadata:   map[string]string{"type": doc.Meta.Type},
		})
	}
	return out
}

// historySeeds picks course codes of the student's high-grade courses
// in the target category.
func (s *Service) historySeeds(ctx context.Context, targetType string) []string {
	high, err := s.Repo.HighGradeHistory(ctx)
	if err != nil {
		telemetry.Warn("high-grade history unavailable for similar seeds", map[string]any{"err": err.Error()})
		return nil
	}
	category := courses.CategoryForTarget(targetType)
	var seeds []string
	for _, course := range high {
		if course.Category != category {
			continue
		}
		if code := strings.TrimSpace(course.CourseCode); code != "" {
			seeds = append(seeds, code)
		}
	}
	return seeds
}
