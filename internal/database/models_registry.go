package database

import "echoboard/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Topic{},
		&models.Feedback{},
		&models.Comment{},
		&models.Upvote{},
		&models.Task{},
		&models.Changelog{},
	}
}
