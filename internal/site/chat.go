package site

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/sisemasexp/portal/internal/assistant"
	"github.com/sisemasexp/portal/internal/ctxutil"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// chat answers one assistant message. Every outcome carries a reply the
// widget can show, including rejections.
func (h *Handler) chat(c *gin.Context) {
	ctx := c.Request.Context()
	key := ctxutil.GetClientIP(ctx)
	if key == "" {
		key = c.ClientIP()
		ctx = ctxutil.WithClientIP(ctx, key)
	}

	if h.chatLimiter != nil && !h.chatLimiter.Allow(key) {
		if wait := h.chatLimiter.RetryAfter(key); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		}
		h.logger.DebugContext(ctx, "Chat rate limited")
		c.JSON(http.StatusTooManyRequests, chatResponse{Reply: assistant.ReplyRateLimit})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, chatResponse{Reply: assistant.PromptEmpty})
		return
	}
	if utf8.RuneCountInString(req.Message) > maxChatMessageLen {
		c.JSON(http.StatusBadRequest, chatResponse{Reply: assistant.ReplyTooLong})
		return
	}

	if h.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.chatTimeout)
		defer cancel()
	}

	resp := h.assistant.Respond(ctx, req.Message)
	h.logger.WithField("intent", resp.Intent.String()).
		WithField("source", resp.Source).
		DebugContext(ctx, "Chat answered")
	c.JSON(http.StatusOK, chatResponse{Reply: resp.Reply})
}
