package callback

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

// LINE rejects text messages longer than this many characters.
const maxTextLength = 5000

// Replier sends one text message with a reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// LineReplier uses the Messaging API.
type LineReplier struct {
	api *messaging_api.MessagingApiAPI
}

func NewLineReplier(channelAccessToken string) (*LineReplier, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, err
	}
	return &LineReplier{api: api}, nil
}

func (l *LineReplier) Reply(_ context.Context, replyToken, text string) error {
	_, err := l.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: truncate(text, maxTextLength)},
		},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	linerag.Logger.Debug("Replied", "length", len(text))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
