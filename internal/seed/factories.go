// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"echoboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Role:  models.RoleUser,
		Image: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFeedback constructs and persists a feedback item for the given user
// and topic, with a realistic created_at spread.
func (f *Factory) CreateFeedback(user *models.User, topic *models.Topic, overrides ...func(*models.Feedback)) (*models.Feedback, error) {
	feedback := &models.Feedback{
		Title:       gofakeit.Sentence(5),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Status:      models.FeedbackOpen,
		UserID:      user.ID,
		TopicID:     topic.ID,
		CreatedAt:   f.pastTime(),
	}

	for _, override := range overrides {
		override(feedback)
	}

	if err := f.db.Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// CreateComment constructs and persists a comment. Pass a parent to build a
// reply.
func (f *Factory) CreateComment(user *models.User, feedback *models.Feedback, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(12),
		FeedbackID: feedback.ID,
		UserID:     user.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTask constructs and persists a task against a feedback item.
func (f *Factory) CreateTask(creator *models.User, feedback *models.Feedback, overrides ...func(*models.Task)) (*models.Task, error) {
	priorities := []models.TaskPriority{
		models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent,
	}
	task := &models.Task{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 6, "\n"),
		Status:      models.TaskBacklog,
		Priority:    priorities[f.rnd.Intn(len(priorities))],
		CreatorID:   creator.ID,
		FeedbackID:  feedback.ID,
	}

	for _, override := range overrides {
		override(task)
	}

	if err := f.db.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// CreateUpvote records an upvote, ignoring duplicates from random pairing.
func (f *Factory) CreateUpvote(user *models.User, feedback *models.Feedback) error {
	upvote := &models.Upvote{
		UserID:     user.ID,
		FeedbackID: feedback.ID,
	}
	err := f.db.Create(upvote).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}
