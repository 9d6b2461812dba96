package collector

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// exportFile mirrors the JSON layout of a Telegram desktop channel export.
// Service messages carry no text and fall out naturally in the pipeline.
type exportFile struct {
	Name     string `json:"name"`
	ID       int64  `json:"id"`
	Messages []struct {
		ID   int64           `json:"id"`
		Date string          `json:"date"`
		Text json.RawMessage `json:"text"`
	} `json:"messages"`
}

// ParseExport reads an uploaded history export file into raw messages for
// the pipeline. The chat id comes from the export header.
func ParseExport(data []byte) ([]RawMessage, error) {
	// Exports written on Windows start with a BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	export := &exportFile{}
	if err := json.Unmarshal(data, export); err != nil {
		return nil, errors.Wrap(err, "parse history export")
	}
	msgs := make([]RawMessage, 0, len(export.Messages))
	for _, m := range export.Messages {
		msgs = append(msgs, RawMessage{
			ID:     m.ID,
			Date:   m.Date,
			Text:   m.Text,
			ChatID: export.ID,
		})
	}
	return msgs, nil
}
