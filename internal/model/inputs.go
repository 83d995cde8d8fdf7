package model

import (
	"io"
	"time"
)

// FileUpload carries an incoming file: the client-supplied name (used to
// keep the extension and the download name) and the byte stream.
type FileUpload struct {
	Name    string
	Content io.Reader
}

type CreateCourseInput struct {
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	EnrollmentKey string  `json:"enrollment_key"`
}

type CreateAssignmentInput struct {
	Title    string
	Deadline time.Time
	File     *FileUpload
}

type SubmitInput struct {
	File        *FileUpload
	ExternalURL *string
}

type GradeInput struct {
	Grade    float64 `json:"grade"`
	Feedback *string `json:"feedback"`
}
