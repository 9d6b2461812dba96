// Package collector turns raw Telegram channel messages into stored,
// classified posts. The feed itself (Bot API polling, history export upload)
// is an external collaborator; both paths produce RawMessage values and go
// through the same pipeline.
package collector

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawMessage is the wire shape both feed paths deliver. Text is either a
// flat JSON string or a sequence of fragments, where a fragment is itself a
// string or an object carrying a "text" field (Telegram's export format for
// messages with entities).
type RawMessage struct {
	ID     int64           `json:"id"`
	Date   string          `json:"date"`
	Text   json.RawMessage `json:"text"`
	ChatID int64           `json:"chatId"`
}

type textFragment struct {
	Text string `json:"text"`
}

// PlainText flattens the message text. Fragment texts are concatenated in
// order; anything unparseable yields an empty string, which the pipeline
// treats as a skip.
func (m *RawMessage) PlainText() string {
	if len(m.Text) == 0 {
		return ""
	}
	var flat string
	if err := json.Unmarshal(m.Text, &flat); err == nil {
		return flat
	}
	var fragments []json.RawMessage
	if err := json.Unmarshal(m.Text, &fragments); err != nil {
		return ""
	}
	var sb strings.Builder
	for _, raw := range fragments {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			sb.WriteString(s)
			continue
		}
		var f textFragment
		if err := json.Unmarshal(raw, &f); err == nil {
			sb.WriteString(f.Text)
		}
	}
	return sb.String()
}

// SourceURL builds the canonical t.me link for a channel message. Internal
// channel ids carry a -100 prefix that the web link format drops.
func SourceURL(chatID, messageID int64) string {
	id := strconv.FormatInt(chatID, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}
