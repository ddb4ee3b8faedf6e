package site

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, pageIndex, h.newPage(pageIndex, "Inicio"))
}

func (h *Handler) base(c *gin.Context) {
	h.render(c, http.StatusOK, pageBase, h.newPage(pageBase, h.catalog.Institution.ShortName))
}

func (h *Handler) mission(c *gin.Context) {
	data := h.newPage(pageMission, "Misión")
	data.Mission = h.catalog.Mission
	h.render(c, http.StatusOK, pageMission, data)
}

// vision renders the vision text with the feedback form. A storage failure
// only hides the recent messages.
func (h *Handler) vision(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	data := h.newPage(pageVision, "Visión")
	data.Vision = h.catalog.Vision

	recent, err := h.feedback.ListRecentFeedback(ctx, recentFeedbackLimit)
	if err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Recent feedback unavailable")
		data.Error = msgFeedbackUnavailable
	}
	data.Feedback = recent
	h.render(c, http.StatusOK, pageVision, data)
}

func (h *Handler) listPrograms(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	data := h.newPage(pagePrograms, "Programas")
	programs, err := h.programs.ListPrograms(ctx)
	if err != nil {
		h.reportFailure(c, "list_programs", err)
		data.Error = msgInternal
		h.render(c, http.StatusInternalServerError, pagePrograms, data)
		return
	}
	data.Programs = programs
	h.render(c, http.StatusOK, pagePrograms, data)
}
