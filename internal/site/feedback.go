package site

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// submitFeedback stores a message left on the vision page.
func (h *Handler) submitFeedback(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	name, message, err := parseFeedback(c.PostForm("nombre"), c.PostForm("mensaje"))
	if err == nil {
		_, err = h.feedback.SaveFeedback(ctx, name, message)
	}

	_, label := statusOf(err)
	if h.recorder != nil {
		h.recorder.RecordFeedback(label)
	}
	if err != nil {
		h.fail(c, "save_feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgFeedbackSaved})
}
