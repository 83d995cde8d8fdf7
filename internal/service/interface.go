package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"coursework_service/internal/model"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Enroll(ctx context.Context, courseID, studentID uuid.UUID) error
	Unenroll(ctx context.Context, courseID, studentID uuid.UUID) error
	IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
	FileKeys(ctx context.Context, courseID uuid.UUID) ([]string, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, courseID, id uuid.UUID) (*model.Assignment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*model.Assignment, error)
	UpdateDeadline(ctx context.Context, courseID, id uuid.UUID, deadline time.Time) (*model.Assignment, error)
	Delete(ctx context.Context, courseID, id uuid.UUID) error
}

type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *model.Submission) (previousFileKey *string, err error)
	GetByID(ctx context.Context, assignmentID, id uuid.UUID) (*model.Submission, error)
	GetByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*model.Submission, error)
	DeleteByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error)
	SetGrade(ctx context.Context, assignmentID, id uuid.UUID, grade float64, feedback *string) (*model.Submission, error)
}

// BlobStore is the external file-storage collaborator. Keys are opaque and
// collision-free; the caller owns key generation.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type EventProducer interface {
	Send(ctx context.Context, key string, message interface{}) error
}
