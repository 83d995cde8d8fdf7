package data

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

type CourseRepository struct {
	db Querier
}

func NewCourseRepository(db Querier) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
INSERT INTO courses (id, teacher_id, title, description, enrollment_key, created_at, edited_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.Exec(ctx, query,
		id,
		course.TeacherID,
		course.Title,
		course.Description,
		course.EnrollmentKey,
		now,
		now,
	)
	if err != nil {
		return handleError(err)
	}

	course.ID = id
	course.CreatedAt = now
	course.EditedAt = now
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	query := `
SELECT id, teacher_id, title, description, enrollment_key, created_at, edited_at
FROM courses
WHERE id = $1
`
	var course model.Course
	if err := pgxscan.Get(ctx, r.db, &course, query, id); err != nil {
		return nil, handleError(err)
	}
	return &course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return errdefs.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Enroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	query := `
INSERT INTO enrollments (course_id, student_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (course_id, student_id) DO NOTHING
`
	_, err := r.db.Exec(ctx, query, courseID, studentID, time.Now())
	if err != nil {
		return handleError(err)
	}
	return nil
}

func (r *CourseRepository) Unenroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID,
	)
	if err != nil {
		return handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return errdefs.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	query := `
SELECT EXISTS (
    SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2
)
`
	var enrolled bool
	if err := pgxscan.Get(ctx, r.db, &enrolled, query, courseID, studentID); err != nil {
		return false, handleError(err)
	}
	return enrolled, nil
}

// FileKeys returns every blob key referenced under a course: assignment
// attachments and submission files. Used for best-effort cleanup before a
// cascade delete.
func (r *CourseRepository) FileKeys(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	query := `
SELECT a.file_key FROM assignments a
WHERE a.course_id = $1 AND a.file_key IS NOT NULL
UNION ALL
SELECT s.file_key FROM submissions s
JOIN assignments a ON a.id = s.assignment_id
WHERE a.course_id = $1 AND s.file_key IS NOT NULL
`
	var keys []string
	if err := pgxscan.Select(ctx, r.db, &keys, query, courseID); err != nil {
		return nil, handleError(err)
	}
	return keys, nil
}
