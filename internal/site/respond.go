package site

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domerrors "github.com/sisemasexp/portal/internal/errors"
	"github.com/sisemasexp/portal/internal/sentry"
)

// User-facing messages.
const (
	msgInternal            = "Ocurrió un error interno. Intenta de nuevo más tarde."
	msgFeedbackUnavailable = "No fue posible cargar los mensajes recientes."
	msgInvalidAction       = "Acción no válida."
	msgProgramCreated      = "Programa agregado exitosamente."
	msgProgramUpdated      = "Programa actualizado exitosamente."
	msgProgramDeleted      = "Programa eliminado exitosamente."
	msgProgramDuplicate    = "Ya existe un programa con el código %d."
	msgProgramMissing      = "El programa con código %d no existe."
	msgFeedbackSaved       = "¡Gracias por compartir tu opinión!"
)

// Mutation status labels for metrics.
const (
	statusSuccess  = "success"
	statusInvalid  = "invalid"
	statusConflict = "duplicate"
	statusMissing  = "not_found"
	statusError    = "error"
)

// statusOf maps an error to its HTTP status and metric label.
func statusOf(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, statusSuccess
	case domerrors.IsInvalidInput(err):
		return http.StatusBadRequest, statusInvalid
	case domerrors.IsDuplicate(err):
		return http.StatusConflict, statusConflict
	case domerrors.IsNotFound(err):
		return http.StatusNotFound, statusMissing
	default:
		return http.StatusInternalServerError, statusError
	}
}

// fail writes the {success:false, message} body for err. Server errors are
// logged and sent to Sentry; their details never reach the client.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	code, _ := statusOf(err)
	message := domerrors.GetUserMessage(err, msgInternal)
	if code >= http.StatusInternalServerError {
		h.reportFailure(c, op, err)
		message = msgInternal
	}
	c.JSON(code, gin.H{"success": false, "message": message})
}

func (h *Handler) reportFailure(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	h.logger.WithError(err).WithField("operation", op).ErrorContext(ctx, "Request failed")
	sentry.CaptureExceptionWithContext(ctx, err, map[string]string{
		"module":    "site",
		"operation": op,
	})
}
