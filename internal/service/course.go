package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

type CourseService struct {
	courseRepo CourseRepository
	blobs      BlobStore
}

func NewCourseService(courseRepo CourseRepository, blobs BlobStore) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		blobs:      blobs,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, input *model.CreateCourseInput) (*model.Course, error) {
	userID, role, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if role != model.RoleTeacher {
		return nil, errdefs.ErrPermissionDenied
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", errdefs.ErrValidation)
	}
	if input.EnrollmentKey == "" {
		return nil, fmt.Errorf("enrollment key is required: %w", errdefs.ErrValidation)
	}

	course := &model.Course{
		TeacherID:     userID,
		Title:         input.Title,
		Description:   input.Description,
		EnrollmentKey: input.EnrollmentKey,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	if _, _, err := identity(ctx); err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, id)
}

// DeleteCourse removes the course and everything it owns. Blob cleanup is
// best-effort and runs before the record delete; the row delete cascades
// to assignments and submissions.
func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireTeacher(ctx, course); err != nil {
		return err
	}

	keys, err := s.courseRepo.FileKeys(ctx, id)
	if err != nil {
		return err
	}
	for _, key := range keys {
		discardBlob(ctx, s.blobs, key)
	}

	return s.courseRepo.Delete(ctx, id)
}

// Enroll adds the calling student to the course when the enrollment key
// matches. Enrolling twice is a no-op.
func (s *CourseService) Enroll(ctx context.Context, courseID uuid.UUID, enrollmentKey string) error {
	userID, role, err := identity(ctx)
	if err != nil {
		return err
	}
	if role != model.RoleStudent {
		return errdefs.ErrPermissionDenied
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.EnrollmentKey != enrollmentKey {
		return fmt.Errorf("invalid enrollment key: %w", errdefs.ErrValidation)
	}

	return s.courseRepo.Enroll(ctx, courseID, userID)
}

func (s *CourseService) Unenroll(ctx context.Context, courseID uuid.UUID) error {
	userID, _, err := identity(ctx)
	if err != nil {
		return err
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return err
	}

	if err := s.courseRepo.Unenroll(ctx, courseID, userID); err != nil {
		if errors.Is(err, errdefs.ErrNotFound) {
			return fmt.Errorf("not enrolled in this course: %w", errdefs.ErrValidation)
		}
		return err
	}
	return nil
}
