package callback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sign returns the x-line-signature value for body.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type syntheticBody struct {
	Destination string           `json:"destination"`
	Events      []syntheticEvent `json:"events"`
}

type syntheticEvent struct {
	Type            string            `json:"type"`
	Mode            string            `json:"mode"`
	Timestamp       int64             `json:"timestamp"`
	Source          map[string]string `json:"source"`
	WebhookEventID  string            `json:"webhookEventId"`
	DeliveryContext map[string]bool   `json:"deliveryContext"`
	ReplyToken      string            `json:"replyToken"`
	Message         map[string]string `json:"message"`
}

// TextMessageBody builds a webhook body holding one text message event, the
// shape the LINE platform posts when a user writes to the bot.
func TextMessageBody(text, replyToken string) ([]byte, error) {
	id := uuid.NewString()
	return json.Marshal(syntheticBody{
		Destination: "linerag-cli",
		Events: []syntheticEvent{{
			Type:            "message",
			Mode:            "active",
			Timestamp:       time.Now().UnixMilli(),
			Source:          map[string]string{"type": "user", "userId": "Ulinerag-cli"},
			WebhookEventID:  id,
			DeliveryContext: map[string]bool{"isRedelivery": false},
			ReplyToken:      replyToken,
			Message: map[string]string{
				"type":       "text",
				"id":         id,
				"quoteToken": id,
				"text":       text,
			},
		}},
	})
}
