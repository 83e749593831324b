package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"echoboard/internal/config"
	"echoboard/internal/database"
	"echoboard/internal/featureflags"
	"echoboard/internal/models"
	"echoboard/internal/repository"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server on an in-memory sqlite database, wiring the
// repositories and services directly so tests skip the metrics and Redis
// plumbing.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret: "test-secret-for-handler-tests",
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	changelogRepo := repository.NewChangelogRepository(db)

	s := &Server{
		config:        cfg,
		db:            db,
		userRepo:      userRepo,
		topicRepo:     topicRepo,
		feedbackRepo:  feedbackRepo,
		commentRepo:   commentRepo,
		taskRepo:      taskRepo,
		changelogRepo: changelogRepo,
		featureFlags:  featureflags.NewManager("changelog-subscriptions=on"),
	}
	s.topicService = service.NewTopicService(topicRepo)
	s.feedbackService = service.NewFeedbackService(feedbackRepo, topicRepo, db)
	s.commentService = service.NewCommentService(commentRepo, feedbackRepo, db)
	s.taskService = service.NewTaskService(taskRepo, feedbackRepo, userRepo, db)
	s.changelogService = service.NewChangelogService(changelogRepo, taskRepo)
	s.userService = service.NewUserService(userRepo)
	return s, db
}

// asUser injects auth locals the way the auth middleware would.
func asUser(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", user.ID)
		c.Locals("userRole", user.Role)
		return c.Next()
	}
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func seedHandlerUser(t *testing.T, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Name: "Handler User", Email: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestSignupAndLogin(t *testing.T) {
	s, _ := newTestServer(t)

	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)

	signup := map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "difference-engine",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", signup))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, models.RoleUser, created.User.Role)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", signup))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid login returns token", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "ada@example.com",
			"password": "difference-engine",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var logged struct {
			Token string `json:"token"`
		}
		decodeBody(t, resp, &logged)
		assert.NotEmpty(t, logged.Token)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "short",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestFeedbackHandlers(t *testing.T) {
	s, db := newTestServer(t)

	user := seedHandlerUser(t, db, models.RoleUser, "user@example.com")
	topic := &models.Topic{Name: "Feature Request", Color: "#0284c7"}
	require.NoError(t, db.Create(topic).Error)

	app := fiber.New()
	app.Get("/api/feedback", s.GetFeedbackList)
	app.Get("/api/feedback/:id", s.GetFeedback)

	authed := fiber.New()
	authed.Use(asUser(user))
	authed.Post("/api/feedback", s.CreateFeedback)
	authed.Post("/api/feedback/:id/upvote", s.ToggleUpvote)

	resp, err := authed.Test(jsonRequest(t, http.MethodPost, "/api/feedback", map[string]interface{}{
		"title":       "Add dark mode support",
		"description": "The app is blinding at night",
		"topic_id":    topic.ID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Feedback
	decodeBody(t, resp, &created)
	assert.Equal(t, models.FeedbackOpen, created.Status)

	t.Run("anonymous list sees the item", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feedback", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list struct {
			Feedback []models.Feedback `json:"feedback"`
		}
		decodeBody(t, resp, &list)
		require.Len(t, list.Feedback, 1)
	})

	t.Run("invalid status filter rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feedback?status=bogus", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("upvote toggles", func(t *testing.T) {
		target := "/api/feedback/1/upvote"
		resp, err := authed.Test(jsonRequest(t, http.MethodPost, target, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var toggled struct {
			Upvoted bool `json:"upvoted"`
		}
		decodeBody(t, resp, &toggled)
		assert.True(t, toggled.Upvoted)

		resp, err = authed.Test(jsonRequest(t, http.MethodPost, target, nil))
		require.NoError(t, err)
		decodeBody(t, resp, &toggled)
		assert.False(t, toggled.Upvoted)
	})

	t.Run("bad id is a 400", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feedback/banana", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing feedback is a 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feedback/999", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTaskLifecycleThroughHandlers(t *testing.T) {
	s, db := newTestServer(t)

	dev := seedHandlerUser(t, db, models.RoleDeveloper, "dev@example.com")
	topic := &models.Topic{Name: "Bug Report", Color: "#dc2626"}
	require.NoError(t, db.Create(topic).Error)
	feedback := &models.Feedback{
		Title:       "Crash when saving",
		Description: "Reproduces on every save action",
		Status:      models.FeedbackOpen,
		UserID:      dev.ID,
		TopicID:     topic.ID,
	}
	require.NoError(t, db.Create(feedback).Error)

	app := fiber.New()
	app.Use(asUser(dev))
	app.Post("/api/tasks", s.CreateTask)
	app.Post("/api/tasks/:id/advance", s.AdvanceTask)
	app.Post("/api/tasks/:id/resolve", s.ResolveTesting)
	app.Post("/api/changelogs", s.CreateChangelog)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "Fix the save crash",
		"feedback_id": feedback.ID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task models.Task
	decodeBody(t, resp, &task)
	assert.Equal(t, models.TaskBacklog, task.Status)

	// The first task pulls the feedback into development.
	var reloaded models.Feedback
	require.NoError(t, db.First(&reloaded, feedback.ID).Error)
	assert.Equal(t, models.FeedbackInDevelopment, reloaded.Status)

	// Walk the board to testing.
	for i := 0; i < 3; i++ {
		resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tasks/1/advance", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	decodeBody(t, resp, &task)
	require.Equal(t, models.TaskTesting, task.Status)

	// Advancing out of testing is refused.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tasks/1/advance", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Approve, completing task and feedback.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/tasks/1/resolve", map[string]bool{"approved": true}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &task)
	assert.Equal(t, models.TaskCompleted, task.Status)

	require.NoError(t, db.First(&reloaded, feedback.ID).Error)
	assert.Equal(t, models.FeedbackCompleted, reloaded.Status)

	// A completed task can be published to the changelog.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/changelogs", map[string]interface{}{
		"title":       "Save crash fixed",
		"description": "Saving no longer crashes the app",
		"task_id":     task.ID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry models.Changelog
	decodeBody(t, resp, &entry)
	assert.Equal(t, feedback.ID, entry.FeedbackID)
}

func TestTaskBoardIsPubliclyReadable(t *testing.T) {
	s, db := newTestServer(t)

	dev := seedHandlerUser(t, db, models.RoleDeveloper, "board@example.com")
	topic := &models.Topic{Name: "Roadmap", Color: "#16a34a"}
	require.NoError(t, db.Create(topic).Error)
	feedback := &models.Feedback{
		Title:       "Export to CSV",
		Description: "Need raw data for reporting",
		Status:      models.FeedbackInDevelopment,
		UserID:      dev.ID,
		TopicID:     topic.ID,
	}
	require.NoError(t, db.Create(feedback).Error)
	task := &models.Task{
		Title:      "Build the CSV exporter",
		Status:     models.TaskInProgress,
		FeedbackID: feedback.ID,
		CreatorID:  dev.ID,
	}
	require.NoError(t, db.Create(task).Error)

	// No auth middleware on the read routes.
	app := fiber.New()
	app.Get("/api/tasks", s.GetTasks)
	app.Get("/api/tasks/:id", s.GetTask)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Tasks []models.Task `json:"tasks"`
	}
	decodeBody(t, resp, &listing)
	require.Len(t, listing.Tasks, 1)
	assert.Equal(t, task.Title, listing.Tasks[0].Title)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Task
	decodeBody(t, resp, &fetched)
	assert.Equal(t, models.TaskInProgress, fetched.Status)
}

func TestCommentThreadHandlers(t *testing.T) {
	s, db := newTestServer(t)

	author := seedHandlerUser(t, db, models.RoleUser, "author@example.com")
	topic := &models.Topic{Name: "General", Color: "#64748b"}
	require.NoError(t, db.Create(topic).Error)
	feedback := &models.Feedback{
		Title:       "Question about exports",
		Description: "How do scheduled exports work?",
		Status:      models.FeedbackOpen,
		UserID:      author.ID,
		TopicID:     topic.ID,
	}
	require.NoError(t, db.Create(feedback).Error)

	app := fiber.New()
	app.Use(asUser(author))
	app.Post("/api/feedback/:id/comments", s.CreateComment)
	app.Get("/api/feedback/:id/comments", s.GetComments)
	app.Post("/api/comments/:id/answer", s.MarkAnswer)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/feedback/1/comments", map[string]string{
		"content": "They run nightly",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var root models.Comment
	decodeBody(t, resp, &root)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/feedback/1/comments", map[string]interface{}{
		"content":   "Thanks, that answers it",
		"parent_id": root.ID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/comments/1/answer", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Feedback
	require.NoError(t, db.First(&reloaded, feedback.ID).Error)
	assert.Equal(t, models.FeedbackClosed, reloaded.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/feedback/1/comments", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var thread struct {
		Comments []*models.Comment `json:"comments"`
	}
	decodeBody(t, resp, &thread)
	require.Len(t, thread.Comments, 1)
	assert.True(t, thread.Comments[0].IsAnswer)
	require.Len(t, thread.Comments[0].Replies, 1)
}

func TestUserRoleHandler(t *testing.T) {
	s, db := newTestServer(t)

	admin := seedHandlerUser(t, db, models.RoleAdmin, "admin@example.com")
	target := seedHandlerUser(t, db, models.RoleUser, "target@example.com")

	app := fiber.New()
	app.Use(asUser(admin))
	app.Put("/api/users/:id/role", s.UpdateUserRole)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/users/2/role", map[string]string{"role": "developer"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, db.First(&updated, target.ID).Error)
	assert.Equal(t, models.RoleDeveloper, updated.Role)

	t.Run("self-demotion refused", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/users/1/role", map[string]string{"role": "user"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestFeatureFlagHandler(t *testing.T) {
	s, db := newTestServer(t)
	user := seedHandlerUser(t, db, models.RoleUser, "flags@example.com")

	app := fiber.New()
	app.Use(asUser(user))
	app.Get("/api/feature-flags", s.GetFeatureFlags)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feature-flags", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Flags map[string]bool `json:"flags"`
	}
	decodeBody(t, resp, &payload)
	assert.True(t, payload.Flags["changelog-subscriptions"])
}
