// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumFeedback int
	ShouldClean bool
	SkipBcrypt  bool
	MaxDays     int
}

// Seed populates the database with demo data: users across all three roles,
// the built-in topics, feedback with comment threads and upvotes, and a
// spread of tasks so the board has items in every column.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d feedback items...", opts.NumUsers, opts.NumFeedback)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	if err := Topics(db); err != nil {
		return fmt.Errorf("failed to seed topics: %w", err)
	}
	var topics []*models.Topic
	if err := db.Find(&topics).Error; err != nil {
		return fmt.Errorf("failed to load topics: %w", err)
	}
	log.Printf("%d topics available", len(topics))

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	feedbacks, err := createFeedback(factory, users, topics, opts.NumFeedback)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	log.Printf("%d feedback items created", len(feedbacks))

	if err := createDiscussion(factory, users, feedbacks); err != nil {
		return fmt.Errorf("failed to create discussion: %w", err)
	}

	if err := createTasks(factory, users, feedbacks); err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE changelogs, tasks, upvotes, comments, feedbacks, topics, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// createUsers builds the user pool. The first user is an admin and roughly a
// fifth of the rest are developers so staff-only flows have actors.
func createUsers(factory *Factory, count int) ([]*models.User, error) {
	if count <= 0 {
		count = 10
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		role := models.RoleUser
		switch {
		case i == 0:
			role = models.RoleAdmin
		case i%5 == 1:
			role = models.RoleDeveloper
		}

		user, err := factory.CreateUser(func(u *models.User) {
			u.Role = role
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createFeedback(factory *Factory, users []*models.User, topics []*models.Topic, count int) ([]*models.Feedback, error) {
	if count <= 0 {
		count = 30
	}

	feedbacks := make([]*models.Feedback, 0, count)
	for i := 0; i < count; i++ {
		user := users[factory.rnd.Intn(len(users))]
		topic := topics[factory.rnd.Intn(len(topics))]

		feedback, err := factory.CreateFeedback(user, topic)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, feedback)
	}
	return feedbacks, nil
}

// createDiscussion hangs comment threads and upvotes off roughly two thirds
// of the feedback items.
func createDiscussion(factory *Factory, users []*models.User, feedbacks []*models.Feedback) error {
	for _, feedback := range feedbacks {
		if factory.rnd.Intn(3) == 0 {
			continue
		}

		numComments := 1 + factory.rnd.Intn(4)
		var roots []*models.Comment
		for i := 0; i < numComments; i++ {
			author := users[factory.rnd.Intn(len(users))]

			var parent *models.Comment
			if len(roots) > 0 && factory.rnd.Intn(2) == 0 {
				parent = roots[factory.rnd.Intn(len(roots))]
			}

			comment, err := factory.CreateComment(author, feedback, parent)
			if err != nil {
				return err
			}
			if parent == nil {
				roots = append(roots, comment)
			}
		}

		numUpvotes := factory.rnd.Intn(len(users))
		for i := 0; i < numUpvotes; i++ {
			if err := factory.CreateUpvote(users[i], feedback); err != nil {
				return err
			}
		}
	}
	return nil
}

// createTasks gives a third of the feedback items a task and walks some of
// those tasks along the board, keeping the feedback statuses consistent with
// the cascade rules.
func createTasks(factory *Factory, users []*models.User, feedbacks []*models.Feedback) error {
	var staff []*models.User
	for _, u := range users {
		if u.Role.Staff() {
			staff = append(staff, u)
		}
	}
	if len(staff) == 0 {
		return nil
	}

	statuses := []models.TaskStatus{
		models.TaskBacklog, models.TaskNextUp, models.TaskInProgress,
		models.TaskTesting, models.TaskCompleted,
	}

	for i, feedback := range feedbacks {
		if i%3 != 0 {
			continue
		}
		creator := staff[factory.rnd.Intn(len(staff))]
		status := statuses[factory.rnd.Intn(len(statuses))]

		task, err := factory.CreateTask(creator, feedback, func(t *models.Task) {
			t.Status = status
			if factory.rnd.Intn(2) == 0 {
				assignee := staff[factory.rnd.Intn(len(staff))]
				t.AssigneeID = &assignee.ID
			}
		})
		if err != nil {
			return err
		}

		feedbackStatus := models.FeedbackInDevelopment
		if task.Status == models.TaskCompleted {
			feedbackStatus = models.FeedbackCompleted
		}
		if err := factory.db.Model(&models.Feedback{}).
			Where("id = ?", feedback.ID).
			Update("status", feedbackStatus).Error; err != nil {
			return err
		}
	}
	return nil
}
