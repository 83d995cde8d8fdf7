package service_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework_service/internal/service"
)

func TestEventSerialization(t *testing.T) {
	t.Run("UnsetIdsOmitted", func(t *testing.T) {
		data, err := json.Marshal(service.Event{
			Type:     service.EventAssignmentDeleted,
			CourseID: uuid.New(),
		})
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(data, &payload))
		assert.Contains(t, payload, "course_id")
		assert.NotContains(t, payload, "assignment_id")
		assert.NotContains(t, payload, "submission_id")
		assert.NotContains(t, payload, "student_id")
	})

	t.Run("SetIdsPresent", func(t *testing.T) {
		assignmentID := uuid.New()
		studentID := uuid.New()
		data, err := json.Marshal(service.Event{
			Type:         service.EventSubmissionReceived,
			CourseID:     uuid.New(),
			AssignmentID: &assignmentID,
			StudentID:    &studentID,
		})
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(data, &payload))
		assert.Equal(t, assignmentID.String(), payload["assignment_id"])
		assert.Equal(t, studentID.String(), payload["student_id"])
	})
}
