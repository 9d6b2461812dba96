package model

import (
	"time"

	"github.com/lib/pq"
)

// Section and MaterialType are the two independent taxonomies a post can be
// classified into. They are structurally identical on purpose: each carries a
// unique name and the trigger hashtags that the classifier compares against a
// post's hashtags (case-insensitively, exact match).
//
// Editing a category never touches existing posts; it only changes future or
// re-run classification results.

type Section struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string         `gorm:"uniqueIndex"`
	Hashtags  pq.StringArray `gorm:"type:text[]"`
}

type MaterialType struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string         `gorm:"uniqueIndex"`
	Hashtags  pq.StringArray `gorm:"type:text[]"`
}
