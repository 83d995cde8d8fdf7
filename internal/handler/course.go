package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
)

const courseCacheTTL = time.Minute

type CourseService interface {
	CreateCourse(ctx context.Context, input *model.CreateCourseInput) (*model.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	Enroll(ctx context.Context, courseID uuid.UUID, enrollmentKey string) error
	Unenroll(ctx context.Context, courseID uuid.UUID) error
}

type CourseHandler struct {
	service CourseService
	cache   Cache
}

func NewCourseHandler(service CourseService, cache Cache) *CourseHandler {
	return &CourseHandler{service: service, cache: cache}
}

func courseCacheKey(id uuid.UUID) string {
	return "course:" + id.String()
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.CreateCourseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("invalid request body: %w", errdefs.ErrValidation))
		return
	}

	course, err := h.service.CreateCourse(r.Context(), &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := courseCacheKey(id)
	if data, ok := h.cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := json.Marshal(course)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "failed to serialize response")
		return
	}
	h.cache.Set(r.Context(), key, data, courseCacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.Delete(r.Context(), courseCacheKey(id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		EnrollmentKey string `json:"enrollment_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, fmt.Errorf("invalid request body: %w", errdefs.ErrValidation))
		return
	}

	if err := h.service.Enroll(r.Context(), id, body.EnrollmentKey); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Unenroll(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
