package site

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domerrors "github.com/sisemasexp/portal/internal/errors"
	"github.com/sisemasexp/portal/internal/storage"
)

// Form actions accepted by POST /programas.
const (
	actionCreate = "agregar"
	actionUpdate = "actualizar"
)

// Mutation labels for metrics.
const (
	mutationCreate = "create"
	mutationUpdate = "update"
	mutationDelete = "delete"
)

// mutateProgram handles the add and update forms of the programs page.
func (h *Handler) mutateProgram(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	var (
		mutation, op, okMessage string
		apply                   func(context.Context, storage.Program) error
	)
	switch c.PostForm("action") {
	case actionCreate:
		mutation, op, okMessage, apply = mutationCreate, "create_program", msgProgramCreated, h.createProgram
	case actionUpdate:
		mutation, op, okMessage, apply = mutationUpdate, "update_program", msgProgramUpdated, h.updateProgram
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": msgInvalidAction})
		return
	}

	program, err := parseProgram(c.PostForm("codcarrera"), c.PostForm("descarrera"))
	if err == nil {
		err = apply(ctx, program)
	}
	h.finishMutation(ctx, c, mutation, op, err, okMessage)
}

func (h *Handler) createProgram(ctx context.Context, p storage.Program) error {
	err := h.programs.CreateProgram(ctx, p)
	if domerrors.IsDuplicate(err) {
		return domerrors.NewWrapper("programs", "create_program").Wrapf(err, msgProgramDuplicate, p.Code)
	}
	return err
}

func (h *Handler) updateProgram(ctx context.Context, p storage.Program) error {
	err := h.programs.UpdateProgram(ctx, p)
	if domerrors.IsNotFound(err) {
		return domerrors.NewWrapper("programs", "update_program").Wrapf(err, msgProgramMissing, p.Code)
	}
	return err
}

func (h *Handler) deleteProgram(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	code, err := parseCode(c.Param("id"))
	if err == nil {
		err = h.programs.DeleteProgram(ctx, code)
		if domerrors.IsNotFound(err) {
			err = domerrors.NewWrapper("programs", "delete_program").Wrapf(err, msgProgramMissing, code)
		}
	}
	h.finishMutation(ctx, c, mutationDelete, "delete_program", err, msgProgramDeleted)
}

// finishMutation records the outcome and writes the JSON reply.
func (h *Handler) finishMutation(ctx context.Context, c *gin.Context, mutation, op string, err error, okMessage string) {
	_, label := statusOf(err)
	if h.recorder != nil {
		h.recorder.RecordProgramMutation(mutation, label)
	}
	if err != nil {
		h.fail(c, op, err)
		return
	}

	h.refreshProgramCount(ctx)
	h.logger.WithField("operation", op).InfoContext(ctx, "Program catalog changed")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": okMessage})
}

// refreshProgramCount updates the programs gauge after a mutation.
func (h *Handler) refreshProgramCount(ctx context.Context) {
	if h.recorder == nil {
		return
	}
	count, err := h.programs.CountPrograms(ctx)
	if err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Program count unavailable")
		return
	}
	h.recorder.SetPrograms(count)
}

// getProgram loads one program into the edit form.
func (h *Handler) getProgram(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	code, err := parseCode(c.Param("id"))
	if err != nil {
		h.fail(c, "get_program", err)
		return
	}

	program, err := h.programs.GetProgramByCode(ctx, code)
	if err != nil {
		if domerrors.IsNotFound(err) {
			err = domerrors.NewWrapper("programs", "get_program").Wrapf(err, msgProgramMissing, code)
		}
		h.fail(c, "get_program", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "programa": program})
}
