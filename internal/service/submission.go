package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

// SubmissionService owns the submission slot of each (assignment, student)
// pair: one current submission per slot, replaced wholesale on resubmit.
type SubmissionService struct {
	courseRepo     CourseRepository
	assignmentRepo AssignmentRepository
	submissionRepo SubmissionRepository
	blobs          BlobStore
	producer       EventProducer
}

func NewSubmissionService(
	courseRepo CourseRepository,
	assignmentRepo AssignmentRepository,
	submissionRepo SubmissionRepository,
	blobs BlobStore,
	producer EventProducer,
) *SubmissionService {
	return &SubmissionService{
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		blobs:          blobs,
		producer:       producer,
	}
}

// Submit records the student's answer, replacing any previous one in the
// slot. Late submissions are accepted; the deadline only affects the timing
// label shown to the teacher. The new blob is stored before the row is
// written, and the replaced blob is discarded only after the row commit, so
// a failure mid-way never leaves the slot without its file.
func (s *SubmissionService) Submit(ctx context.Context, courseID, assignmentID uuid.UUID, input *model.SubmitInput) (*model.Submission, error) {
	userID, role, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if role != model.RoleStudent {
		return nil, errdefs.ErrPermissionDenied
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.courseRepo.IsEnrolled(ctx, course.ID, userID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, errdefs.ErrPermissionDenied
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, courseID, assignmentID)
	if err != nil {
		return nil, err
	}

	if input.File == nil && input.ExternalURL == nil {
		return nil, fmt.Errorf("a file or an external url is required: %w", errdefs.ErrValidation)
	}

	submission := &model.Submission{
		AssignmentID: assignment.ID,
		StudentID:    userID,
		ExternalURL:  input.ExternalURL,
		SubmittedAt:  time.Now(),
	}

	if input.File != nil {
		key, err := blobKey(input.File.Name)
		if err != nil {
			return nil, err
		}
		if err := s.blobs.Upload(ctx, key, input.File.Content); err != nil {
			return nil, err
		}
		name := input.File.Name
		submission.FileKey = &key
		submission.FileName = &name
	}

	previousFileKey, err := s.submissionRepo.Upsert(ctx, submission)
	if err != nil {
		if submission.FileKey != nil {
			discardBlob(ctx, s.blobs, *submission.FileKey)
		}
		return nil, err
	}
	if previousFileKey != nil {
		discardBlob(ctx, s.blobs, *previousFileKey)
	}

	emit(ctx, s.producer, Event{
		Type:         EventSubmissionReceived,
		CourseID:     courseID,
		AssignmentID: &assignment.ID,
		SubmissionID: &submission.ID,
		StudentID:    &userID,
	})
	return submission, nil
}

// DeleteSubmission lets a student withdraw their own submission. The row
// delete identifies the slot by the caller, so students cannot touch each
// other's work.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, courseID, assignmentID uuid.UUID) error {
	userID, role, err := identity(ctx)
	if err != nil {
		return err
	}
	if role != model.RoleStudent {
		return errdefs.ErrPermissionDenied
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return err
	}
	if _, err := s.assignmentRepo.GetByID(ctx, courseID, assignmentID); err != nil {
		return err
	}

	submission, err := s.submissionRepo.DeleteByStudent(ctx, assignmentID, userID)
	if err != nil {
		return err
	}
	if submission.FileKey != nil {
		discardBlob(ctx, s.blobs, *submission.FileKey)
	}

	emit(ctx, s.producer, Event{
		Type:         EventSubmissionDeleted,
		CourseID:     courseID,
		AssignmentID: &assignmentID,
		SubmissionID: &submission.ID,
		StudentID:    &userID,
	})
	return nil
}

// ListSubmissions returns every submission for the assignment, each
// annotated with its timing relative to the deadline. Teacher only.
func (s *SubmissionService) ListSubmissions(ctx context.Context, courseID, assignmentID uuid.UUID) ([]*model.SubmissionView, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, courseID, assignmentID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	views := make([]*model.SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, &model.SubmissionView{
			Submission: *submission,
			Timing:     model.TimingLabel(submission.SubmittedAt, assignment.Deadline),
		})
	}
	return views, nil
}

// DownloadSubmission streams a submission's file to the course teacher or
// the owning student. When the submission is an external link there is no
// blob; the caller gets the url back and redirects.
func (s *SubmissionService) DownloadSubmission(ctx context.Context, courseID, assignmentID, id uuid.UUID) (body io.ReadCloser, name string, externalURL string, err error) {
	userID, role, err := identity(ctx)
	if err != nil {
		return nil, "", "", err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, "", "", err
	}
	if _, err := s.assignmentRepo.GetByID(ctx, courseID, assignmentID); err != nil {
		return nil, "", "", err
	}

	submission, err := s.submissionRepo.GetByID(ctx, assignmentID, id)
	if err != nil {
		return nil, "", "", err
	}

	isTeacher := role == model.RoleTeacher && course.TeacherID == userID
	isOwner := role == model.RoleStudent && submission.StudentID == userID
	if !isTeacher && !isOwner {
		return nil, "", "", errdefs.ErrPermissionDenied
	}

	if submission.FileKey == nil {
		if submission.ExternalURL != nil {
			return nil, "", *submission.ExternalURL, nil
		}
		return nil, "", "", fmt.Errorf("submission has no file: %w", errdefs.ErrNotFound)
	}

	body, err = s.blobs.Download(ctx, *submission.FileKey)
	if err != nil {
		return nil, "", "", err
	}
	return body, "submission_" + submission.ID.String() + path.Ext(*submission.FileKey), "", nil
}

// Grade records the teacher's score and optional feedback on a submission.
func (s *SubmissionService) Grade(ctx context.Context, courseID, assignmentID, id uuid.UUID, input *model.GradeInput) (*model.Submission, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return nil, err
	}
	if _, err := s.assignmentRepo.GetByID(ctx, courseID, assignmentID); err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.SetGrade(ctx, assignmentID, id, input.Grade, input.Feedback)
	if err != nil {
		return nil, err
	}

	emit(ctx, s.producer, Event{
		Type:         EventSubmissionGraded,
		CourseID:     courseID,
		AssignmentID: &assignmentID,
		SubmissionID: &submission.ID,
		StudentID:    &submission.StudentID,
	})
	return submission, nil
}
