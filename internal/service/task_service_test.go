package service

import (
	"testing"

	"echoboard/internal/models"
	"echoboard/internal/policy"
	"echoboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTaskService(db *gorm.DB) *TaskService {
	return NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewFeedbackRepository(db),
		repository.NewUserRepository(db),
		db,
	)
}

func TestTaskService_CreateTask_RequiresStaff(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	user := createTestUser(t, db, models.RoleUser)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, user.ID, topic.ID, models.FeedbackOpen)

	_, err := svc.CreateTask(testCtx, actorFor(user), CreateTaskInput{
		Title:      "Implement the thing",
		FeedbackID: feedback.ID,
	})
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestTaskService_CreateTask_FirstTaskMovesFeedbackToInDevelopment(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackOpen)

	task, err := svc.CreateTask(testCtx, actorFor(dev), CreateTaskInput{
		Title:      "Implement the thing",
		FeedbackID: feedback.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskBacklog, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.FeedbackInDevelopment, feedbackStatus(t, db, feedback.ID))

	// A second task leaves the status alone.
	_, err = svc.CreateTask(testCtx, actorFor(dev), CreateTaskInput{
		Title:      "Another slice of work",
		FeedbackID: feedback.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackInDevelopment, feedbackStatus(t, db, feedback.ID))
}

func TestTaskService_CreateTask_ClosedFeedbackKeepsStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackClosed)

	_, err := svc.CreateTask(testCtx, actorFor(dev), CreateTaskInput{
		Title:      "Follow-up after close",
		FeedbackID: feedback.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackClosed, feedbackStatus(t, db, feedback.ID))
}

func TestTaskService_CreateTask_UnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackOpen)

	missing := uint(9999)
	_, err := svc.CreateTask(testCtx, actorFor(dev), CreateTaskInput{
		Title:      "Implement the thing",
		FeedbackID: feedback.ID,
		AssigneeID: &missing,
	})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestTaskService_UpdateTask_CompletionCompletesFeedback(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
	task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskInProgress)

	completed := models.TaskCompleted
	updated, err := svc.UpdateTask(testCtx, actorFor(dev), task.ID, UpdateTaskInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, updated.Status)
	assert.Equal(t, models.FeedbackCompleted, feedbackStatus(t, db, feedback.ID))
}

func TestTaskService_UpdateTask_AlreadyCompletedDoesNotRefire(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
	task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskCompleted)

	// Saving a completed task with completed status again must not touch
	// the feedback.
	completed := models.TaskCompleted
	newTitle := "Renamed completed task"
	_, err := svc.UpdateTask(testCtx, actorFor(dev), task.ID, UpdateTaskInput{
		Title:  &newTitle,
		Status: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackInDevelopment, feedbackStatus(t, db, feedback.ID))
}

func TestTaskService_UpdateTask_ClearAssignee(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
	task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskBacklog)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Update("assignee_id", dev.ID).Error)

	updated, err := svc.UpdateTask(testCtx, actorFor(dev), task.ID, UpdateTaskInput{ClearAssignee: true})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
}

func TestTaskService_AdvanceTask_WalksTheBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
	task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskBacklog)

	want := []models.TaskStatus{models.TaskNextUp, models.TaskInProgress, models.TaskTesting}
	for _, status := range want {
		advanced, err := svc.AdvanceTask(testCtx, actorFor(dev), task.ID)
		require.NoError(t, err)
		assert.Equal(t, status, advanced.Status)
	}

	// Testing needs an explicit approve/reject decision.
	_, err := svc.AdvanceTask(testCtx, actorFor(dev), task.ID)
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestTaskService_AdvanceTask_CompletedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackCompleted)
	task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskCompleted)

	_, err := svc.AdvanceTask(testCtx, actorFor(dev), task.ID)
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestTaskService_ResolveTesting(t *testing.T) {
	t.Run("approval completes task and feedback", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)

		dev := createTestUser(t, db, models.RoleDeveloper)
		topic := createTestTopic(t, db)
		feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
		task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskTesting)

		resolved, err := svc.ResolveTesting(testCtx, actorFor(dev), task.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.TaskCompleted, resolved.Status)
		assert.Equal(t, models.FeedbackCompleted, feedbackStatus(t, db, feedback.ID))
	})

	t.Run("rejection sends task back to next-up", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)

		dev := createTestUser(t, db, models.RoleDeveloper)
		topic := createTestTopic(t, db)
		feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
		task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskTesting)

		resolved, err := svc.ResolveTesting(testCtx, actorFor(dev), task.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.TaskNextUp, resolved.Status)
		assert.Equal(t, models.FeedbackInDevelopment, feedbackStatus(t, db, feedback.ID))
	})

	t.Run("only tasks in testing can be resolved", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTaskService(db)

		dev := createTestUser(t, db, models.RoleDeveloper)
		topic := createTestTopic(t, db)
		feedback := createTestFeedback(t, db, dev.ID, topic.ID, models.FeedbackInDevelopment)
		task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskBacklog)

		_, err := svc.ResolveTesting(testCtx, actorFor(dev), task.ID, true)
		assertAppErrorCode(t, err, models.CodeConflict)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	admin := createTestUser(t, db, models.RoleAdmin)
	dev := createTestUser(t, db, models.RoleDeveloper)
	topic := createTestTopic(t, db)
	feedback := createTestFeedback(t, db, admin.ID, topic.ID, models.FeedbackInDevelopment)

	t.Run("developers cannot delete", func(t *testing.T) {
		task := createTestTask(t, db, feedback.ID, dev.ID, models.TaskBacklog)
		err := svc.DeleteTask(testCtx, actorFor(dev), task.ID)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("changelog entry blocks deletion", func(t *testing.T) {
		task := createTestTask(t, db, feedback.ID, admin.ID, models.TaskCompleted)
		require.NoError(t, db.Create(&models.Changelog{
			Title:       "Shipped something",
			Description: "It is out",
			TaskID:      task.ID,
			FeedbackID:  feedback.ID,
		}).Error)

		err := svc.DeleteTask(testCtx, actorFor(admin), task.ID)
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("admin deletes a plain task", func(t *testing.T) {
		task := createTestTask(t, db, feedback.ID, admin.ID, models.TaskBacklog)
		require.NoError(t, svc.DeleteTask(testCtx, actorFor(admin), task.ID))

		_, err := svc.GetTask(testCtx, task.ID)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestTaskService_AnonymousCannotManage(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db)

	_, err := svc.CreateTask(testCtx, policy.Actor{}, CreateTaskInput{Title: "Drive-by task", FeedbackID: 1})
	assertAppErrorCode(t, err, models.CodeForbidden)
}
