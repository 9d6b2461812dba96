package collector

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tgportal/tgportal/classify"
	"github.com/tgportal/tgportal/model"
	Logger "github.com/tgportal/tgportal/utils/log"
)

// PostStore is the slice of persistent storage the pipeline consumes. The
// gorm implementation lives in the store package; tests inject fakes.
type PostStore interface {
	// PostBySourceMessageID returns (nil, nil) when no post has that id.
	PostBySourceMessageID(id int64) (*model.Post, error)
	CreatePost(post *model.Post) error
	// ReplacePostLinks deletes all existing section/material-type links for
	// the post and inserts the given ones, in one transaction.
	ReplacePostLinks(postID string, sectionIDs, materialTypeIDs []string) error
	ListSections() ([]model.Section, error)
	ListMaterialTypes() ([]model.MaterialType, error)
}

// IngestResult reports the outcome for one message. Skipped duplicates and
// empty messages are normal outcomes, not errors.
type IngestResult struct {
	Created bool
	PostID  string
}

// BatchResult aggregates one batch run. Failed messages count as skipped.
type BatchResult struct {
	Created int
	Skipped int
}

// Pipeline ingests raw channel messages: extract text and hashtags, derive a
// title, auto-classify by hashtag and persist the post with its links.
// Idempotent on the source message id.
type Pipeline struct {
	store PostStore
	now   func() time.Time
}

func NewPipeline(store PostStore) *Pipeline {
	return &Pipeline{store: store, now: time.Now}
}

// IngestOne processes a single message. Empty or whitespace-only text and an
// already ingested source message id are both skips, never duplicate inserts.
func (p *Pipeline) IngestOne(msg RawMessage) (IngestResult, error) {
	text := msg.PlainText()
	if strings.TrimSpace(text) == "" {
		return IngestResult{}, nil
	}

	existing, err := p.store.PostBySourceMessageID(msg.ID)
	if err != nil {
		return IngestResult{}, errors.Wrap(err, "check for existing post")
	}
	if existing != nil {
		return IngestResult{PostID: existing.Id}, nil
	}

	post := &model.Post{
		Id:              uuid.New().String(),
		Title:           DeriveTitle(text),
		Content:         text,
		Hashtags:        ExtractHashtags(text),
		SourceMessageId: msg.ID,
		SourceUrl:       SourceURL(msg.ChatID, msg.ID),
		PublishedAt:     p.parseDate(msg),
	}
	if err := p.store.CreatePost(post); err != nil {
		return IngestResult{}, errors.Wrap(err, "persist post")
	}

	sections, err := p.store.ListSections()
	if err != nil {
		return IngestResult{}, errors.Wrap(err, "list sections")
	}
	materialTypes, err := p.store.ListMaterialTypes()
	if err != nil {
		return IngestResult{}, errors.Wrap(err, "list material types")
	}
	sectionIDs, materialTypeIDs := classify.Classify(post.Hashtags, sections, materialTypes)
	if err := p.store.ReplacePostLinks(post.Id, sectionIDs, materialTypeIDs); err != nil {
		return IngestResult{}, errors.Wrap(err, "persist classification links")
	}

	return IngestResult{Created: true, PostID: post.Id}, nil
}

// IngestBatch processes messages sequentially in source order. A failure on
// one message is logged with its id and counted as skipped; the rest of the
// batch always runs.
func (p *Pipeline) IngestBatch(msgs []RawMessage) BatchResult {
	var result BatchResult
	for _, msg := range msgs {
		res, err := p.IngestOne(msg)
		if err != nil {
			Logger.Log.WithFields(logrus.Fields{"message_id": msg.ID}).Error("ingest failed: ", err)
			result.Skipped++
			continue
		}
		if res.Created {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result
}

func (p *Pipeline) parseDate(msg RawMessage) time.Time {
	t, err := dateparse.ParseAny(msg.Date)
	if err != nil {
		Logger.Log.WithFields(logrus.Fields{"message_id": msg.ID}).Warn("unparseable message date: ", msg.Date)
		return p.now()
	}
	return t
}
