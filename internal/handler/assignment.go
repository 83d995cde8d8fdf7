package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

type AssignmentService interface {
	CreateAssignment(ctx context.Context, courseID uuid.UUID, input *model.CreateAssignmentInput) (*model.Assignment, error)
	GetAssignment(ctx context.Context, courseID, id uuid.UUID) (*model.Assignment, error)
	ListAssignments(ctx context.Context, courseID uuid.UUID) ([]*model.AssignmentView, error)
	UpdateDeadline(ctx context.Context, courseID, id uuid.UUID, deadline time.Time) (*model.Assignment, error)
	DeleteAssignment(ctx context.Context, courseID, id uuid.UUID) error
	DownloadFile(ctx context.Context, courseID, id uuid.UUID) (io.ReadCloser, string, error)
}

type AssignmentHandler struct {
	service       AssignmentService
	maxUploadSize int64
}

func NewAssignmentHandler(service AssignmentService, maxUploadSize int64) *AssignmentHandler {
	return &AssignmentHandler{service: service, maxUploadSize: maxUploadSize}
}

// Create accepts multipart form data: `title`, `deadline` (RFC 3339) and an
// optional `file` part.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, r, fmt.Errorf("invalid multipart form: %w", errdefs.ErrValidation))
		return
	}

	input := &model.CreateAssignmentInput{
		Title: r.FormValue("title"),
	}
	if raw := r.FormValue("deadline"); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("deadline must be an RFC 3339 timestamp: %w", errdefs.ErrValidation))
			return
		}
		input.Deadline = deadline
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		input.File = &model.FileUpload{Name: header.Filename, Content: file}
	} else if err != http.ErrMissingFile {
		writeError(w, r, fmt.Errorf("invalid file part: %w", errdefs.ErrValidation))
		return
	}

	assignment, err := h.service.CreateAssignment(r.Context(), courseID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := h.service.ListAssignments(r.Context(), courseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	assignment, err := h.service.GetAssignment(r.Context(), courseID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) UpdateDeadline(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Deadline time.Time `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, fmt.Errorf("invalid request body: %w", errdefs.ErrValidation))
		return
	}

	assignment, err := h.service.UpdateDeadline(r.Context(), courseID, id, body.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteAssignment(r.Context(), courseID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssignmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseUUIDParam(r, "assignmentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, name, err := h.service.DownloadFile(r.Context(), courseID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	streamAttachment(w, r, body, name)
}
