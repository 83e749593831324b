package service

import (
	"context"
	"testing"

	"echoboard/internal/database"
	"echoboard/internal/models"
	"echoboard/internal/policy"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    string(role) + "-" + t.Name() + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestTopic(t *testing.T, db *gorm.DB) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: "Topic " + t.Name(), Color: "#0284c7"}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

func createTestFeedback(t *testing.T, db *gorm.DB, userID, topicID uint, status models.FeedbackStatus) *models.Feedback {
	t.Helper()
	feedback := &models.Feedback{
		Title:       "Sample feedback title",
		Description: "A description long enough to pass validation",
		Status:      status,
		UserID:      userID,
		TopicID:     topicID,
	}
	require.NoError(t, db.Create(feedback).Error)
	return feedback
}

func createTestTask(t *testing.T, db *gorm.DB, feedbackID, creatorID uint, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       "Sample task title",
		Description: "Implementation work",
		Status:      status,
		Priority:    models.PriorityMedium,
		CreatorID:   creatorID,
		FeedbackID:  feedbackID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func createTestComment(t *testing.T, db *gorm.DB, feedbackID, userID uint, parentID *uint) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Content:    "A comment",
		FeedbackID: feedbackID,
		UserID:     userID,
		ParentID:   parentID,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func actorFor(user *models.User) policy.Actor {
	return policy.Actor{UserID: user.ID, Role: user.Role}
}

func feedbackStatus(t *testing.T, db *gorm.DB, id uint) models.FeedbackStatus {
	t.Helper()
	var feedback models.Feedback
	require.NoError(t, db.First(&feedback, id).Error)
	return feedback.Status
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

var testCtx = context.Background()
