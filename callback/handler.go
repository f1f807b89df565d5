// Package callback serves the LINE webhook: signature check, event dispatch,
// reply.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

// SignatureHeader carries the HMAC of the request body.
const SignatureHeader = "x-line-signature"

type Handler struct {
	channelSecret string
	responder     Responder
	replier       Replier
}

func NewHandler(channelSecret string, responder Responder, replier Replier) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		responder:     responder,
		replier:       replier,
	}
}

// Handle verifies r and answers every text message in it. An invalid
// signature returns before anything else is called.
func (h *Handler) Handle(r *http.Request) error {
	log := linerag.Logger
	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return fmt.Errorf("verify webhook: %w", err)
		}
		return fmt.Errorf("parse webhook: %w", err)
	}
	log.Info("Webhook received", "destination", cb.Destination, "events", len(cb.Events))

	var errs []error
	for i, event := range cb.Events {
		if err := h.dispatch(r.Context(), event); err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (h *Handler) dispatch(ctx context.Context, event webhook.EventInterface) error {
	log := linerag.Logger
	switch e := event.(type) {
	case webhook.MessageEvent:
		switch message := e.Message.(type) {
		case webhook.TextMessageContent:
			return h.reply(ctx, e.ReplyToken, message.Text)
		default:
			log.Info("Ignoring message", "type", e.Message.GetType())
		}
	default:
		log.Info("Ignoring event", "type", event.GetType())
	}
	return nil
}

func (h *Handler) reply(ctx context.Context, replyToken, text string) error {
	answer, err := h.responder.Respond(ctx, text)
	if err != nil {
		return err
	}
	return h.replier.Reply(ctx, replyToken, answer)
}

// Callback always answers 200 {"message":"ok"}; failures only reach the log.
func (h *Handler) Callback(c *gin.Context) {
	if err := h.Handle(c.Request); err != nil {
		linerag.Logger.Error("Webhook failed", "error", err)
	}
	c.JSON(http.StatusOK, linerag.OK)
}

// NewRouter mounts the callback on / and /callback.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		linerag.Logger.Error("Webhook panicked", "panic", recovered)
		c.JSON(http.StatusOK, linerag.OK)
	}))
	r.POST("/", h.Callback)
	r.POST("/callback", h.Callback)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, linerag.OK)
	})
	return r
}
