package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursework_service/pkg/logging"
)

const (
	EventAssignmentCreated         = "assignment.created"
	EventAssignmentDeadlineUpdated = "assignment.deadline_updated"
	EventAssignmentDeleted         = "assignment.deleted"
	EventSubmissionReceived        = "submission.received"
	EventSubmissionDeleted         = "submission.deleted"
	EventSubmissionGraded          = "submission.graded"
)

// Event ids beyond the course are pointers so unset ones stay out of the
// payload instead of serializing as zero uuids.
type Event struct {
	Type         string     `json:"type"`
	CourseID     uuid.UUID  `json:"course_id"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	SubmissionID *uuid.UUID `json:"submission_id,omitempty"`
	StudentID    *uuid.UUID `json:"student_id,omitempty"`
	At           time.Time  `json:"at"`
}

// emit publishes a domain event. Publication is best-effort: a broker
// failure is logged and never fails the request that produced the event.
func emit(ctx context.Context, producer EventProducer, event Event) {
	if producer == nil {
		return
	}
	event.At = time.Now()
	if err := producer.Send(ctx, event.CourseID.String(), event); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "failed to publish event",
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	}
}
