package seed

import (
	"fmt"

	"echoboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInTopic is a permanent system topic.
type BuiltInTopic struct {
	Name  string
	Color string
}

// BuiltInTopics defines the default set of topics a fresh board starts with.
var BuiltInTopics = []BuiltInTopic{
	{Name: "Feature Request", Color: "#0284c7"},
	{Name: "Bug Report", Color: "#dc2626"},
	{Name: "Performance", Color: "#d97706"},
	{Name: "Documentation", Color: "#059669"},
	{Name: "Integrations", Color: "#7c3aed"},
	{Name: "General", Color: "#64748b"},
}

// Topics seeds the permanent built-in topics, updating colors in place when
// they change between releases.
func Topics(db *gorm.DB) error {
	for _, item := range BuiltInTopics {
		topic := models.Topic{
			Name:  item.Name,
			Color: item.Color,
		}

		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"color", "updated_at"}),
		}).Create(&topic).Error; err != nil {
			return fmt.Errorf("seed built-in topic %s: %w", item.Name, err)
		}
	}

	return nil
}
