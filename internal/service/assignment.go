package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

// AssignmentService owns the assignments of a course: teacher-only
// mutation, future-only deadline edits, cascading file cleanup.
type AssignmentService struct {
	courseRepo     CourseRepository
	assignmentRepo AssignmentRepository
	submissionRepo SubmissionRepository
	blobs          BlobStore
	producer       EventProducer
}

func NewAssignmentService(
	courseRepo CourseRepository,
	assignmentRepo AssignmentRepository,
	submissionRepo SubmissionRepository,
	blobs BlobStore,
	producer EventProducer,
) *AssignmentService {
	return &AssignmentService{
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		blobs:          blobs,
		producer:       producer,
	}
}

// CreateAssignment stores the optional reference file first, then the
// record; a failed record write discards the fresh blob so no orphan
// remains. The deadline is advisory at creation time, only edits enforce
// the future-only rule.
func (s *AssignmentService) CreateAssignment(ctx context.Context, courseID uuid.UUID, input *model.CreateAssignmentInput) (*model.Assignment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title and deadline are required: %w", errdefs.ErrValidation)
	}
	if input.Deadline.IsZero() {
		return nil, fmt.Errorf("title and deadline are required: %w", errdefs.ErrValidation)
	}

	assignment := &model.Assignment{
		CourseID: courseID,
		Title:    input.Title,
		Deadline: input.Deadline,
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
		assignment.FileKey = &key
		assignment.FileName = &name
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if assignment.FileKey != nil {
			discardBlob(ctx, s.blobs, *assignment.FileKey)
		}
		return nil, err
	}

	emit(ctx, s.producer, Event{
		Type:         EventAssignmentCreated,
		CourseID:     courseID,
		AssignmentID: &assignment.ID,
	})
	return assignment, nil
}

func (s *AssignmentService) GetAssignment(ctx context.Context, courseID, id uuid.UUID) (*model.Assignment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.courseRepo, course); err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetByID(ctx, courseID, id)
}

// ListAssignments returns the course's assignments. For a student the
// entries carry their own current submission, if any.
func (s *AssignmentService) ListAssignments(ctx context.Context, courseID uuid.UUID) ([]*model.AssignmentView, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.courseRepo, course); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	userID, role, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*model.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := &model.AssignmentView{Assignment: *a}
		if role == model.RoleStudent {
			submission, err := s.submissionRepo.GetByStudent(ctx, a.ID, userID)
			switch {
			case errors.Is(err, errdefs.ErrNotFound):
			case err != nil:
				return nil, err
			default:
				view.MySubmission = submission
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateDeadline moves an assignment's deadline; the new value must be
// strictly in the future at edit time.
func (s *AssignmentService) UpdateDeadline(ctx context.Context, courseID, id uuid.UUID, deadline time.Time) (*model.Assignment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return nil, err
	}
	if !deadline.After(time.Now()) {
		return nil, fmt.Errorf("deadline must be a future date/time: %w", errdefs.ErrValidation)
	}

	assignment, err := s.assignmentRepo.UpdateDeadline(ctx, courseID, id, deadline)
	if err != nil {
		return nil, err
	}

	emit(ctx, s.producer, Event{
		Type:         EventAssignmentDeadlineUpdated,
		CourseID:     courseID,
		AssignmentID: &id,
	})
	return assignment, nil
}

// DeleteAssignment discards the attached file and every submission file
// best-effort, then removes the record; submission rows go with it.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, courseID, id uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, courseID, id)
	if err != nil {
		return err
	}

	if assignment.FileKey != nil {
		discardBlob(ctx, s.blobs, *assignment.FileKey)
	}
	submissions, err := s.submissionRepo.ListByAssignment(ctx, id)
	if err != nil {
		return err
	}
	for _, submission := range submissions {
		if submission.FileKey != nil {
			discardBlob(ctx, s.blobs, *submission.FileKey)
		}
	}

	if err := s.assignmentRepo.Delete(ctx, courseID, id); err != nil {
		return err
	}

	emit(ctx, s.producer, Event{
		Type:         EventAssignmentDeleted,
		CourseID:     courseID,
		AssignmentID: &id,
	})
	return nil
}

// DownloadFile streams the assignment's reference file. The download name
// is the assignment title with the stored file's extension.
func (s *AssignmentService) DownloadFile(ctx context.Context, courseID, id uuid.UUID) (io.ReadCloser, string, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	if err := requireMember(ctx, s.courseRepo, course); err != nil {
		return nil, "", err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, courseID, id)
	if err != nil {
		return nil, "", err
	}
	if assignment.FileKey == nil {
		return nil, "", fmt.Errorf("no file attached to this assignment: %w", errdefs.ErrNotFound)
	}

	body, err := s.blobs.Download(ctx, *assignment.FileKey)
	if err != nil {
		return nil, "", err
	}
	return body, assignment.Title + path.Ext(*assignment.FileKey), nil
}
