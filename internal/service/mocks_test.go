package service_test

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coursework_service/internal/model"
)

type mockCourseRepo struct {
	mock.Mock
}

func (m *mockCourseRepo) Create(ctx context.Context, course *model.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *mockCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCourseRepo) Enroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	args := m.Called(ctx, courseID, studentID)
	return args.Error(0)
}

func (m *mockCourseRepo) Unenroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	args := m.Called(ctx, courseID, studentID)
	return args.Error(0)
}

func (m *mockCourseRepo) IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, courseID, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCourseRepo) FileKeys(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, courseID, id uuid.UUID) (*model.Assignment, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*model.Assignment, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) UpdateDeadline(ctx context.Context, courseID, id uuid.UUID, deadline time.Time) (*model.Assignment, error) {
	args := m.Called(ctx, courseID, id, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, courseID, id uuid.UUID) error {
	args := m.Called(ctx, courseID, id)
	return args.Error(0)
}

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) Upsert(ctx context.Context, submission *model.Submission) (*string, error) {
	args := m.Called(ctx, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, assignmentID, id uuid.UUID) (*model.Submission, error) {
	args := m.Called(ctx, assignmentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) GetByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	args := m.Called(ctx, assignmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*model.Submission, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) DeleteByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	args := m.Called(ctx, assignmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *mockSubmissionRepo) SetGrade(ctx context.Context, assignmentID, id uuid.UUID, grade float64, feedback *string) (*model.Submission, error) {
	args := m.Called(ctx, assignmentID, id, grade, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Upload(ctx context.Context, key string, body io.Reader) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

func (m *mockBlobStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Send(ctx context.Context, key string, message interface{}) error {
	args := m.Called(ctx, key, message)
	return args.Error(0)
}
