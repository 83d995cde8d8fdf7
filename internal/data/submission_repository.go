package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursework_service/internal/model"
)

type SubmissionRepository struct {
	db Querier
}

func NewSubmissionRepository(db Querier) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Upsert writes the student's current submission for an assignment,
// replacing any previous one in the same slot. Every replace happens under
// a row lock so concurrent resubmits by the same student serialize, the
// last write wins, and the replaced submission's file key is always
// reported back so the caller can discard the orphaned blob after commit.
// When two first-time submits race, the losing insert retries and goes
// down the locked replace path instead.
func (r *SubmissionRepository) Upsert(ctx context.Context, submission *model.Submission) (*string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository error: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for {
		var previousFileKey *string
		err = tx.QueryRow(ctx,
			`SELECT file_key FROM submissions WHERE assignment_id = $1 AND student_id = $2 FOR UPDATE`,
			submission.AssignmentID, submission.StudentID,
		).Scan(&previousFileKey)
		switch {
		case err == nil:
			if err := r.replace(ctx, tx, submission); err != nil {
				return nil, err
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("repository error: %w", err)
			}
			return previousFileKey, nil
		case errors.Is(err, pgx.ErrNoRows):
			inserted, err := r.insert(ctx, tx, submission)
			if err != nil {
				return nil, err
			}
			if inserted {
				if err := tx.Commit(ctx); err != nil {
					return nil, fmt.Errorf("repository error: %w", err)
				}
				return nil, nil
			}
			// lost a first-submit race; loop to lock the winner's row
		default:
			return nil, handleError(err)
		}
	}
}

func (r *SubmissionRepository) replace(ctx context.Context, tx pgx.Tx, submission *model.Submission) error {
	query := `
UPDATE submissions
SET file_key = $1,
    file_name = $2,
    external_url = $3,
    submitted_at = $4,
    grade = NULL,
    feedback = NULL
WHERE assignment_id = $5 AND student_id = $6
RETURNING id
`
	err := tx.QueryRow(ctx, query,
		submission.FileKey,
		submission.FileName,
		submission.ExternalURL,
		submission.SubmittedAt,
		submission.AssignmentID,
		submission.StudentID,
	).Scan(&submission.ID)
	if err != nil {
		return handleError(err)
	}
	return nil
}

func (r *SubmissionRepository) insert(ctx context.Context, tx pgx.Tx, submission *model.Submission) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, err
	}

	query := `
INSERT INTO submissions (id, assignment_id, student_id, file_key, file_name, external_url, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (assignment_id, student_id) DO NOTHING
RETURNING id
`
	err = tx.QueryRow(ctx, query,
		id,
		submission.AssignmentID,
		submission.StudentID,
		submission.FileKey,
		submission.FileName,
		submission.ExternalURL,
		submission.SubmittedAt,
	).Scan(&submission.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, handleError(err)
	}
	return true, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, assignmentID, id uuid.UUID) (*model.Submission, error) {
	query := `
SELECT id, assignment_id, student_id, file_key, file_name, external_url, submitted_at, grade, feedback
FROM submissions
WHERE id = $1 AND assignment_id = $2
`
	var submission model.Submission
	if err := pgxscan.Get(ctx, r.db, &submission, query, id, assignmentID); err != nil {
		return nil, handleError(err)
	}
	return &submission, nil
}

func (r *SubmissionRepository) GetByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	query := `
SELECT id, assignment_id, student_id, file_key, file_name, external_url, submitted_at, grade, feedback
FROM submissions
WHERE assignment_id = $1 AND student_id = $2
`
	var submission model.Submission
	if err := pgxscan.Get(ctx, r.db, &submission, query, assignmentID, studentID); err != nil {
		return nil, handleError(err)
	}
	return &submission, nil
}

func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*model.Submission, error) {
	query := `
SELECT id, assignment_id, student_id, file_key, file_name, external_url, submitted_at, grade, feedback
FROM submissions
WHERE assignment_id = $1
ORDER BY submitted_at
`
	var submissions []*model.Submission
	if err := pgxscan.Select(ctx, r.db, &submissions, query, assignmentID); err != nil {
		return nil, handleError(err)
	}
	return submissions, nil
}

// DeleteByStudent removes the student's submission and returns the deleted
// row so the caller can discard its blob.
func (r *SubmissionRepository) DeleteByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	query := `
DELETE FROM submissions
WHERE assignment_id = $1 AND student_id = $2
RETURNING id, assignment_id, student_id, file_key, file_name, external_url, submitted_at, grade, feedback
`
	var submission model.Submission
	if err := pgxscan.Get(ctx, r.db, &submission, query, assignmentID, studentID); err != nil {
		return nil, handleError(err)
	}
	return &submission, nil
}

func (r *SubmissionRepository) SetGrade(ctx context.Context, assignmentID, id uuid.UUID, grade float64, feedback *string) (*model.Submission, error) {
	query := `
UPDATE submissions
SET grade = $1, feedback = $2
WHERE id = $3 AND assignment_id = $4
RETURNING id, assignment_id, student_id, file_key, file_name, external_url, submitted_at, grade, feedback
`
	var submission model.Submission
	if err := pgxscan.Get(ctx, r.db, &submission, query, grade, feedback, id, assignmentID); err != nil {
		return nil, handleError(err)
	}
	return &submission, nil
}
