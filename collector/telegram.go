package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Feed supplies recent raw messages for a channel. The production
// implementation talks to the Telegram Bot API; tests inject fakes.
type Feed interface {
	RecentMessages(ctx context.Context, channelID int64, from time.Time) ([]RawMessage, error)
}

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient polls channel posts through the Bot API getUpdates call.
// The bot must be an admin of the channel to receive its posts.
type TelegramClient struct {
	httpClient *http.Client
	botToken   string
	baseURL    string
}

func NewTelegramClient(botToken string) *TelegramClient {
	return &TelegramClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		botToken:   botToken,
		baseURL:    telegramAPIBase,
	}
}

type telegramUpdate struct {
	UpdateID    int64 `json:"update_id"`
	ChannelPost *struct {
		MessageID int64           `json:"message_id"`
		Date      int64           `json:"date"`
		Text      json.RawMessage `json:"text"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"channel_post"`
}

type telegramResponse struct {
	Ok          bool             `json:"ok"`
	Description string           `json:"description"`
	Result      []telegramUpdate `json:"result"`
}

// RecentMessages fetches pending channel posts and filters them down to the
// requested channel and time range.
func (c *TelegramClient) RecentMessages(ctx context.Context, channelID int64, from time.Time) ([]RawMessage, error) {
	uri := fmt.Sprintf("%s/bot%s/getUpdates?allowed_updates=[\"channel_post\"]", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build getUpdates request")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call getUpdates")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read getUpdates response")
	}
	resp := &telegramResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, errors.Wrap(err, "parse getUpdates response")
	}
	if !resp.Ok {
		return nil, errors.Errorf("telegram api error: %s", resp.Description)
	}

	var msgs []RawMessage
	for _, update := range resp.Result {
		post := update.ChannelPost
		if post == nil || post.Chat.ID != channelID {
			continue
		}
		date := time.Unix(post.Date, 0).UTC()
		if date.Before(from) {
			continue
		}
		msgs = append(msgs, RawMessage{
			ID:     post.MessageID,
			Date:   date.Format(time.RFC3339),
			Text:   post.Text,
			ChatID: post.Chat.ID,
		})
	}
	return msgs, nil
}
