package service_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
	"coursework_service/internal/service"
)

type submissionFixture struct {
	courseRepo     *mockCourseRepo
	assignmentRepo *mockAssignmentRepo
	submissionRepo *mockSubmissionRepo
	blobs          *mockBlobStore
	svc            *service.SubmissionService

	teacherID    uuid.UUID
	studentID    uuid.UUID
	courseID     uuid.UUID
	assignmentID uuid.UUID
	course       *model.Course
	assignment   *model.Assignment
}

func newSubmissionFixture(deadline time.Time) *submissionFixture {
	f := &submissionFixture{
		courseRepo:     &mockCourseRepo{},
		assignmentRepo: &mockAssignmentRepo{},
		submissionRepo: &mockSubmissionRepo{},
		blobs:          &mockBlobStore{},
		teacherID:      uuid.New(),
		studentID:      uuid.New(),
		courseID:       uuid.New(),
		assignmentID:   uuid.New(),
	}
	f.course = &model.Course{ID: f.courseID, TeacherID: f.teacherID}
	f.assignment = &model.Assignment{ID: f.assignmentID, CourseID: f.courseID, Title: "Homework 1", Deadline: deadline}
	f.svc = service.NewSubmissionService(f.courseRepo, f.assignmentRepo, f.submissionRepo, f.blobs, nil)
	return f
}

func TestSubmit(t *testing.T) {
	t.Run("Success_FirstSubmission", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.submissionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Submission")).Return(nil, nil)

		submission, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			File: &model.FileUpload{Name: "answer.pdf", Content: bytes.NewReader([]byte("answer"))},
		})
		assert.NoError(t, err)
		assert.Equal(t, f.studentID, submission.StudentID)
		assert.NotNil(t, submission.FileKey)
		f.blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Success_ResubmitDiscardsOldBlob", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.submissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(strPtr("old-answer.pdf"), nil)
		f.blobs.On("Delete", mock.Anything, "old-answer.pdf").Return(nil)

		_, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			File: &model.FileUpload{Name: "answer-v2.pdf", Content: bytes.NewReader([]byte("better answer"))},
		})
		assert.NoError(t, err)
		f.blobs.AssertCalled(t, "Delete", mock.Anything, "old-answer.pdf")
	})

	t.Run("Success_AfterDeadline", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(-72 * time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil, nil)

		url := "https://github.com/student/solution"
		submission, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			ExternalURL: &url,
		})
		assert.NoError(t, err)
		assert.Equal(t, url, *submission.ExternalURL)
	})

	t.Run("Success_EventFailureIgnored", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))
		producer := &mockProducer{}
		svc := service.NewSubmissionService(f.courseRepo, f.assignmentRepo, f.submissionRepo, f.blobs, producer)

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil, nil)
		producer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

		url := "https://github.com/student/solution"
		_, err := svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			ExternalURL: &url,
		})
		assert.NoError(t, err)
		producer.AssertExpectations(t)
	})

	t.Run("Error_NotEnrolled", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(false, nil)

		_, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			File: &model.FileUpload{Name: "answer.pdf", Content: bytes.NewReader(nil)},
		})
		assert.True(t, errors.Is(err, errdefs.ErrPermissionDenied))
	})

	t.Run("Error_TeacherRole", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		_, err := f.svc.Submit(teacherCtx(f.teacherID), f.courseID, f.assignmentID, &model.SubmitInput{})
		assert.True(t, errors.Is(err, errdefs.ErrPermissionDenied))
	})

	t.Run("Error_NoFileOrURL", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)

		_, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{})
		assert.True(t, errors.Is(err, errdefs.ErrValidation))
	})

	t.Run("Error_UpsertFailureDiscardsNewBlob", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.courseRepo.On("IsEnrolled", mock.Anything, f.courseID, f.studentID).Return(true, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.submissionRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		f.blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Submit(studentCtx(f.studentID), f.courseID, f.assignmentID, &model.SubmitInput{
			File: &model.FileUpload{Name: "answer.pdf", Content: bytes.NewReader(nil)},
		})
		assert.Error(t, err)
		f.blobs.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestDeleteSubmission(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		submission := &model.Submission{
			ID:           uuid.New(),
			AssignmentID: f.assignmentID,
			StudentID:    f.studentID,
			FileKey:      strPtr("answer.pdf"),
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("DeleteByStudent", mock.Anything, f.assignmentID, f.studentID).Return(submission, nil)
		f.blobs.On("Delete", mock.Anything, "answer.pdf").Return(nil)

		err := f.svc.DeleteSubmission(studentCtx(f.studentID), f.courseID, f.assignmentID)
		assert.NoError(t, err)
		f.blobs.AssertExpectations(t)
	})

	t.Run("Error_NoSubmission", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("DeleteByStudent", mock.Anything, f.assignmentID, f.studentID).
			Return(nil, errdefs.ErrNotFound)

		err := f.svc.DeleteSubmission(studentCtx(f.studentID), f.courseID, f.assignmentID)
		assert.True(t, errors.Is(err, errdefs.ErrNotFound))
	})
}

func TestListSubmissions(t *testing.T) {
	t.Run("Success_AnnotatesTiming", func(t *testing.T) {
		deadline := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		f := newSubmissionFixture(deadline)

		submissions := []*model.Submission{
			{ID: uuid.New(), AssignmentID: f.assignmentID, SubmittedAt: deadline.Add(-2 * time.Hour)},
			{ID: uuid.New(), AssignmentID: f.assignmentID, SubmittedAt: deadline.Add(90 * time.Minute)},
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("ListByAssignment", mock.Anything, f.assignmentID).Return(submissions, nil)

		views, err := f.svc.ListSubmissions(teacherCtx(f.teacherID), f.courseID, f.assignmentID)
		assert.NoError(t, err)
		assert.Len(t, views, 2)
		assert.Equal(t, "2 hours early", views[0].Timing)
		assert.Equal(t, "1.5 hours late", views[1].Timing)
	})

	t.Run("Error_StudentRole", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)

		_, err := f.svc.ListSubmissions(studentCtx(f.studentID), f.courseID, f.assignmentID)
		assert.True(t, errors.Is(err, errdefs.ErrPermissionDenied))
	})
}

func TestDownloadSubmission(t *testing.T) {
	t.Run("Success_Owner", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		submissionID := uuid.New()
		submission := &model.Submission{
			ID:           submissionID,
			AssignmentID: f.assignmentID,
			StudentID:    f.studentID,
			FileKey:      strPtr("0190a1b2.pdf"),
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("GetByID", mock.Anything, f.assignmentID, submissionID).Return(submission, nil)
		f.blobs.On("Download", mock.Anything, "0190a1b2.pdf").
			Return(io.NopCloser(bytes.NewReader([]byte("answer"))), nil)

		body, name, externalURL, err := f.svc.DownloadSubmission(studentCtx(f.studentID), f.courseID, f.assignmentID, submissionID)
		assert.NoError(t, err)
		assert.Empty(t, externalURL)
		assert.Equal(t, "submission_"+submissionID.String()+".pdf", name)
		body.Close()
	})

	t.Run("Success_ExternalURL", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		submissionID := uuid.New()
		submission := &model.Submission{
			ID:           submissionID,
			AssignmentID: f.assignmentID,
			StudentID:    f.studentID,
			ExternalURL:  strPtr("https://github.com/student/solution"),
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("GetByID", mock.Anything, f.assignmentID, submissionID).Return(submission, nil)

		body, _, externalURL, err := f.svc.DownloadSubmission(teacherCtx(f.teacherID), f.courseID, f.assignmentID, submissionID)
		assert.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, "https://github.com/student/solution", externalURL)
	})

	t.Run("Error_OtherStudent", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		submissionID := uuid.New()
		submission := &model.Submission{
			ID:           submissionID,
			AssignmentID: f.assignmentID,
			StudentID:    f.studentID,
			FileKey:      strPtr("answer.pdf"),
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("GetByID", mock.Anything, f.assignmentID, submissionID).Return(submission, nil)

		_, _, _, err := f.svc.DownloadSubmission(studentCtx(uuid.New()), f.courseID, f.assignmentID, submissionID)
		assert.True(t, errors.Is(err, errdefs.ErrPermissionDenied))
	})
}

func TestGrade(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		submissionID := uuid.New()
		feedback := strPtr("well done")
		graded := &model.Submission{
			ID:           submissionID,
			AssignmentID: f.assignmentID,
			StudentID:    f.studentID,
			Grade:        func() *float64 { g := 95.0; return &g }(),
			Feedback:     feedback,
		}
		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)
		f.assignmentRepo.On("GetByID", mock.Anything, f.courseID, f.assignmentID).Return(f.assignment, nil)
		f.submissionRepo.On("SetGrade", mock.Anything, f.assignmentID, submissionID, 95.0, feedback).Return(graded, nil)

		submission, err := f.svc.Grade(teacherCtx(f.teacherID), f.courseID, f.assignmentID, submissionID, &model.GradeInput{
			Grade:    95.0,
			Feedback: feedback,
		})
		assert.NoError(t, err)
		assert.Equal(t, 95.0, *submission.Grade)
	})

	t.Run("Error_StudentRole", func(t *testing.T) {
		f := newSubmissionFixture(time.Now().Add(time.Hour))

		f.courseRepo.On("GetByID", mock.Anything, f.courseID).Return(f.course, nil)

		_, err := f.svc.Grade(studentCtx(f.studentID), f.courseID, f.assignmentID, uuid.New(), &model.GradeInput{Grade: 50})
		assert.True(t, errors.Is(err, errdefs.ErrPermissionDenied))
	})
}
