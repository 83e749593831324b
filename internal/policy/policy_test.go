package policy

import (
	"testing"

	"echoboard/internal/models"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = Actor{}
	regular   = Actor{UserID: 10, Role: models.RoleUser}
	developer = Actor{UserID: 20, Role: models.RoleDeveloper}
	admin     = Actor{UserID: 30, Role: models.RoleAdmin}
)

func TestTopicAndTaskManagement(t *testing.T) {
	assert.False(t, CanManageTopics(regular))
	assert.False(t, CanManageTopics(developer))
	assert.True(t, CanManageTopics(admin))

	assert.False(t, CanManageTasks(anonymous))
	assert.False(t, CanManageTasks(regular))
	assert.True(t, CanManageTasks(developer))
	assert.True(t, CanManageTasks(admin))

	// Deleting is narrower than managing.
	assert.False(t, CanDeleteTask(developer))
	assert.True(t, CanDeleteTask(admin))
}

func TestFeedbackPermissions(t *testing.T) {
	owned := &models.Feedback{UserID: regular.UserID}
	foreign := &models.Feedback{UserID: 999}

	assert.False(t, CanCreateFeedback(anonymous))
	assert.True(t, CanCreateFeedback(regular))

	assert.True(t, CanUpdateFeedback(regular, owned))
	assert.False(t, CanUpdateFeedback(regular, foreign))
	assert.True(t, CanUpdateFeedback(developer, foreign))

	assert.True(t, CanDeleteFeedback(regular, owned))
	assert.False(t, CanDeleteFeedback(regular, foreign))
	assert.False(t, CanDeleteFeedback(developer, foreign))
	assert.True(t, CanDeleteFeedback(admin, foreign))
}

func TestAnswerPermissions(t *testing.T) {
	feedback := &models.Feedback{UserID: regular.UserID}

	assert.True(t, CanMarkAnswer(regular, feedback))
	assert.True(t, CanMarkAnswer(admin, feedback))
	assert.False(t, CanMarkAnswer(developer, feedback))
	assert.False(t, CanMarkAnswer(anonymous, feedback))
}

func TestCommentPermissions(t *testing.T) {
	feedback := &models.Feedback{UserID: 50}
	comment := &models.Comment{UserID: regular.UserID}

	assert.False(t, CanComment(anonymous))
	assert.True(t, CanComment(regular))

	assert.True(t, CanDeleteComment(regular, comment, feedback))
	assert.True(t, CanDeleteComment(Actor{UserID: 50, Role: models.RoleUser}, comment, feedback))
	assert.True(t, CanDeleteComment(admin, comment, feedback))
	assert.False(t, CanDeleteComment(developer, comment, feedback))
}

func TestChangelogAndUserPermissions(t *testing.T) {
	assert.False(t, CanManageChangelogs(regular))
	assert.True(t, CanManageChangelogs(developer))
	assert.False(t, CanDeleteChangelog(developer))
	assert.True(t, CanDeleteChangelog(admin))

	assert.False(t, CanManageUsers(developer))
	assert.True(t, CanManageUsers(admin))
}

func TestAuthenticated(t *testing.T) {
	assert.False(t, anonymous.Authenticated())
	assert.True(t, regular.Authenticated())
}
