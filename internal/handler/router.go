package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the full route tree. Everything under /courses requires
// authentication; /health does not.
func NewRouter(
	courses *CourseHandler,
	assignments *AssignmentHandler,
	submissions *SubmissionHandler,
	loggingMiddleware func(http.Handler) http.Handler,
	authMiddleware func(http.Handler) http.Handler,
) chi.Router {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/courses", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", courses.Create)
		r.Route("/{courseID}", func(r chi.Router) {
			r.Get("/", courses.Get)
			r.Delete("/", courses.Delete)
			r.Post("/enroll", courses.Enroll)
			r.Post("/unenroll", courses.Unenroll)

			r.Route("/assignments", func(r chi.Router) {
				r.Post("/", assignments.Create)
				r.Get("/", assignments.List)
				r.Route("/{assignmentID}", func(r chi.Router) {
					r.Get("/", assignments.Get)
					r.Delete("/", assignments.Delete)
					r.Put("/deadline", assignments.UpdateDeadline)
					r.Get("/download", assignments.Download)

					r.Post("/submit", submissions.Submit)
					r.Delete("/submit", submissions.Delete)
					r.Get("/submissions", submissions.List)
					r.Get("/submissions/{submissionID}/download", submissions.Download)
					r.Put("/submissions/{submissionID}/grade", submissions.Grade)
				})
			})
		})
	})

	return r
}
