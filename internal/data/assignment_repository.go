package data

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

type AssignmentRepository struct {
	db Querier
}

func NewAssignmentRepository(db Querier) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	query := `
INSERT INTO assignments (id, course_id, title, deadline, file_key, file_name, created_at, edited_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.Exec(ctx, query,
		id,
		assignment.CourseID,
		assignment.Title,
		assignment.Deadline,
		assignment.FileKey,
		assignment.FileName,
		now,
		now,
	)
	if err != nil {
		return handleError(err)
	}

	assignment.ID = id
	assignment.CreatedAt = now
	assignment.EditedAt = now
	return nil
}

// GetByID is scoped by course so an assignment id from another course reads
// as absent rather than leaking across aggregates.
func (r *AssignmentRepository) GetByID(ctx context.Context, courseID, id uuid.UUID) (*model.Assignment, error) {
	query := `
SELECT id, course_id, title, deadline, file_key, file_name, created_at, edited_at
FROM assignments
WHERE id = $1 AND course_id = $2
`
	var assignment model.Assignment
	if err := pgxscan.Get(ctx, r.db, &assignment, query, id, courseID); err != nil {
		return nil, handleError(err)
	}
	return &assignment, nil
}

func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*model.Assignment, error) {
	query := `
SELECT id, course_id, title, deadline, file_key, file_name, created_at, edited_at
FROM assignments
WHERE course_id = $1
ORDER BY created_at
`
	var assignments []*model.Assignment
	if err := pgxscan.Select(ctx, r.db, &assignments, query, courseID); err != nil {
		return nil, handleError(err)
	}
	return assignments, nil
}

func (r *AssignmentRepository) UpdateDeadline(ctx context.Context, courseID, id uuid.UUID, deadline time.Time) (*model.Assignment, error) {
	query := `
UPDATE assignments
SET deadline = $1, edited_at = $2
WHERE id = $3 AND course_id = $4
RETURNING id, course_id, title, deadline, file_key, file_name, created_at, edited_at
`
	var assignment model.Assignment
	if err := pgxscan.Get(ctx, r.db, &assignment, query, deadline, time.Now(), id, courseID); err != nil {
		return nil, handleError(err)
	}
	return &assignment, nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, courseID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assignments WHERE id = $1 AND course_id = $2`,
		id, courseID,
	)
	if err != nil {
		return handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return errdefs.ErrNotFound
	}
	return nil
}
