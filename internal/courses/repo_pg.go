package courses

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo against Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) GetOrCreateDepartment(ctx context.Context, code string) (int64, error) {
	const insert = `
INSERT INTO departments (code, name_ko, name_en)
VALUES ($1, $1, $1)
ON CONFLICT (code) DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, insert, code); err != nil {
		return 0, err
	}

	const query = `SELECT id FROM departments WHERE code = $1 LIMIT 1`
	var id int64
	if err := r.DB.QueryRowContext(ctx, query, code).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) Upsert(ctx context.Context, course Course) (Course, error) {
	const query = `
INSERT INTO courses (department_id, course_code, title, grade, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (department_id, course_code) DO UPDATE SET
  title = EXCLUDED.title,
  grade = EXCLUDED.grade,
  category = EXCLUDED.category,
  updated_at = now()
RETURNING id, created_at, updated_at`
	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, query,
		course.DepartmentID,
		course.CourseCode,
		course.Title,
		string(course.Grade),
		string(course.Category),
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return Course{}, err
	}
	course.ID = id
	course.CreatedAt = createdAt
	course.UpdatedAt = updatedAt
	return course, nil
}

func (r *PGRepo) History(ctx context.Context) ([]Course, error) {
	const query = `
SELECT id, department_id, course_code, title, grade, category, created_at, updated_at
FROM courses
ORDER BY id`
	return r.queryCourses(ctx, query)
}

func (r *PGRepo) HistoryByCategory(ctx context.Context, category Category) ([]Course, error) {
	const query = `
SELECT id, department_id, course_code, title, grade, category, created_at, updated_at
FROM courses
WHERE category = $1
ORDER BY id`
	return r.queryCourses(ctx, query, string(category))
}

func (r *PGRepo) HighGradeHistory(ctx context.Context) ([]Course, error) {
	const query = `
SELECT id, department_id, course_code, title, grade, category, created_at, updated_at
FROM courses
WHERE grade IN ('A_PLUS', 'A')
ORDER BY id`
	return r.queryCourses(ctx, query)
}

func (r *PGRepo) queryCourses(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var (
			course    Course
			grade     string
			category  string
			updatedAt sql.NullTime
		)
		if err := rows.Scan(
			&course.ID,
			&course.DepartmentID,
			&course.CourseCode,
			&course.Title,
			&grade,
			&category,
			&course.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}
		course.Grade = Grade(grade)
		course.Category = Category(category)
		if updatedAt.Valid {
			course.UpdatedAt = updatedAt.Time
		} else {
			course.UpdatedAt = course.CreatedAt
		}
		out = append(out, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
