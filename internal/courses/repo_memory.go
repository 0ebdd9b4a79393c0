package courses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu          sync.RWMutex
	departments map[string]int64
	courses     map[int64]Course
	nextDeptID  int64
	nextID      int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		departments: make(map[string]int64),
		courses:     make(map[int64]Course),
		nextDeptID:  1,
		nextID:      1,
	}
}

func (r *MemoryRepo) GetOrCreateDepartment(ctx context.Context, code string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.departments[code]; ok {
		return id, nil
	}
	id := r.nextDeptID
	r.nextDeptID++
	r.departments[code] = id
	return id, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, course Course) (Course, error) {
	if err := ctx.Err(); err != nil {
		return Course{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, existing := range r.courses {
		if existing.DepartmentID == course.DepartmentID && existing.CourseCode == course.CourseCode {
			course.ID = id
			course.CreatedAt = existing.CreatedAt
			course.UpdatedAt = now
			r.courses[id] = course
			return course, nil
		}
	}
	course.ID = r.nextID
	r.nextID++
	course.CreatedAt = now
	course.UpdatedAt = now
	r.courses[course.ID] = course
	return course, nil
}

func (r *MemoryRepo) History(ctx context.Context) ([]Course, error) {
	return r.filter(ctx, func(Course) bool { return true })
}

func (r *MemoryRepo) HistoryByCategory(ctx context.Context, category Category) ([]Course, error) {
	return r.filter(ctx, func(c Course) bool { return c.Category == category })
}

func (r *MemoryRepo) HighGradeHistory(ctx context.Context) ([]Course, error) {
	return r.filter(ctx, func(c Course) bool { return c.Grade.IsHigh() })
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Course) bool) ([]Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Course
	for _, course := range r.courses {
		if keep(course) {
			out = append(out, course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
