package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is the aggregate root. It exclusively owns its assignments,
// and every assignment exclusively owns its submissions.
type Course struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TeacherID     uuid.UUID `db:"teacher_id" json:"teacher_id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description,omitempty"`
	EnrollmentKey string    `db:"enrollment_key" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	EditedAt      time.Time `db:"edited_at" json:"edited_at"`
}

type Assignment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CourseID  uuid.UUID `db:"course_id" json:"course_id"`
	Title     string    `db:"title" json:"title"`
	Deadline  time.Time `db:"deadline" json:"deadline"`
	FileKey   *string   `db:"file_key" json:"-"`
	FileName  *string   `db:"file_name" json:"file_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	EditedAt  time.Time `db:"edited_at" json:"edited_at"`
}

// Submission is the single current answer of one student to one assignment.
// The (assignment, student) pair is unique; resubmission replaces the slot.
type Submission struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AssignmentID uuid.UUID `db:"assignment_id" json:"assignment_id"`
	StudentID    uuid.UUID `db:"student_id" json:"student_id"`
	FileKey      *string   `db:"file_key" json:"-"`
	FileName     *string   `db:"file_name" json:"file_name,omitempty"`
	ExternalURL  *string   `db:"external_url" json:"external_url,omitempty"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
	Grade        *float64  `db:"grade" json:"grade,omitempty"`
	Feedback     *string   `db:"feedback" json:"feedback,omitempty"`
}

// SubmissionView is the teacher-facing listing entry: the submission plus
// its timing label relative to the assignment deadline.
type SubmissionView struct {
	Submission
	Timing string `json:"timing"`
}

// AssignmentView is the listing entry for course members. For students it
// carries their own current submission, if one exists.
type AssignmentView struct {
	Assignment
	MySubmission *Submission `json:"my_submission,omitempty"`
}
