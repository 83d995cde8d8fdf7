package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
	"coursework_service/pkg/logging"
)

type SubmissionService interface {
	Submit(ctx context.Context, courseID, assignmentID uuid.UUID, input *model.SubmitInput) (*model.Submission, error)
	DeleteSubmission(ctx context.Context, courseID, assignmentID uuid.UUID) error
	ListSubmissions(ctx context.Context, courseID, assignmentID uuid.UUID) ([]*model.SubmissionView, error)
	DownloadSubmission(ctx context.Context, courseID, assignmentID, id uuid.UUID) (io.ReadCloser, string, string, error)
	Grade(ctx context.Context, courseID, assignmentID, id uuid.UUID, input *model.GradeInput) (*model.Submission, error)
}

type SubmissionHandler struct {
	service       SubmissionService
	maxUploadSize int64
}

func NewSubmissionHandler(service SubmissionService, maxUploadSize int64) *SubmissionHandler {
	return &SubmissionHandler{service: service, maxUploadSize: maxUploadSize}
}

// Submit accepts multipart form data with a `file` part, an `external_url`
// field, or both.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignmentID, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, r, fmt.Errorf("invalid multipart form: %w", errdefs.ErrValidation))
		return
	}

	input := &model.SubmitInput{}
	if url := r.FormValue("external_url"); url != "" {
		input.ExternalURL = &url
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		input.File = &model.FileUpload{Name: header.Filename, Content: file}
	} else if err != http.ErrMissingFile {
		writeError(w, r, fmt.Errorf("invalid file part: %w", errdefs.ErrValidation))
		return
	}

	submission, err := h.service.Submit(r.Context(), courseID, assignmentID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignmentID, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteSubmission(r.Context(), courseID, assignmentID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignmentID, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := h.service.ListSubmissions(r.Context(), courseID, assignmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Download streams the submission's file, or redirects when the submission
// is an external link.
func (h *SubmissionHandler) Download(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignmentID, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "submissionID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, name, externalURL, err := h.service.DownloadSubmission(r.Context(), courseID, assignmentID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if externalURL != "" {
		http.Redirect(w, r, externalURL, http.StatusFound)
		return
	}
	defer body.Close()

	streamAttachment(w, r, body, name)
}

func (h *SubmissionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	assignmentID, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "submissionID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input model.GradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("invalid request body: %w", errdefs.ErrValidation))
		return
	}

	submission, err := h.service.Grade(r.Context(), courseID, assignmentID, id, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func streamAttachment(w http.ResponseWriter, r *http.Request, body io.Reader, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if _, err := io.Copy(w, body); err != nil {
		if logger, ok := logging.GetFromContext(r.Context()); ok {
			logger.Error(r.Context(), "failed to stream file", zap.Error(err))
		}
	}
}
