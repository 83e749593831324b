package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackStatus_Valid(t *testing.T) {
	for _, s := range []FeedbackStatus{FeedbackOpen, FeedbackInDevelopment, FeedbackCompleted, FeedbackClosed} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, FeedbackStatus("archived").Valid())
	assert.False(t, FeedbackStatus("").Valid())
}

func TestTaskStatus_Next(t *testing.T) {
	tests := []struct {
		from TaskStatus
		want TaskStatus
		ok   bool
	}{
		{TaskBacklog, TaskNextUp, true},
		{TaskNextUp, TaskInProgress, true},
		{TaskInProgress, TaskTesting, true},
		{TaskTesting, "", false},
		{TaskCompleted, "", false},
	}
	for _, tt := range tests {
		next, ok := tt.from.Next()
		assert.Equal(t, tt.ok, ok, string(tt.from))
		assert.Equal(t, tt.want, next, string(tt.from))
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.Staff())
	assert.True(t, RoleDeveloper.Staff())
	assert.False(t, RoleUser.Staff())
	assert.False(t, Role("moderator").Valid())
}

func TestCommentDeleted(t *testing.T) {
	c := &Comment{Content: "hello"}
	assert.False(t, c.Deleted())
	c.Content = DeletedCommentMarker
	assert.True(t, c.Deleted())
}
