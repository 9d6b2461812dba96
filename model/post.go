package model

import (
	"time"

	"github.com/lib/pq"
)

/*

Post is a single Telegram channel message stored for browsing.

Id: primary key
CreatedAt: time when entity is created

Title: short title derived from the message text
Content: message plain text
Hashtags: hashtags captured from the text, case preserved, first-seen order
SourceMessageId: Telegram message id, globally unique, ingest is idempotent on it
SourceUrl: canonical t.me link to the original message
PublishedAt: message date in the channel

Sections / MaterialTypes: classification links, "many-to-many" relation.
Fully replaced on every classification save.
*/

type Post struct {
	Id              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	Title           string
	Content         string
	Hashtags        pq.StringArray `gorm:"type:text[]"`
	SourceMessageId int64          `gorm:"uniqueIndex"`
	SourceUrl       string
	PublishedAt     time.Time
	Sections        []*Section      `gorm:"many2many:post_sections;"`
	MaterialTypes   []*MaterialType `gorm:"many2many:post_material_types;"`
}
