package site

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	domerrors "github.com/sisemasexp/portal/internal/errors"
	"github.com/sisemasexp/portal/internal/storage"
)

// Field limits, in characters.
const (
	maxProgramNameLen     = 120
	maxFeedbackNameLen    = 80
	maxFeedbackMessageLen = 1000
	maxChatMessageLen     = 1000
)

// parseCode validates a program code: a positive integer.
func parseCode(raw string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || code <= 0 {
		return 0, domerrors.NewValidationError("codcarrera", "El código debe ser un número entero positivo.")
	}
	return code, nil
}

// parseProgram validates the program form fields.
func parseProgram(rawCode, rawName string) (storage.Program, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return storage.Program{}, err
	}
	name, err := requiredText("descarrera", "El campo descripción", rawName, maxProgramNameLen)
	if err != nil {
		return storage.Program{}, err
	}
	return storage.Program{Code: code, Name: name}, nil
}

// parseFeedback validates the vision form fields.
func parseFeedback(rawName, rawMessage string) (name, message string, err error) {
	if name, err = requiredText("nombre", "El campo nombre", rawName, maxFeedbackNameLen); err != nil {
		return "", "", err
	}
	if message, err = requiredText("mensaje", "El campo mensaje", rawMessage, maxFeedbackMessageLen); err != nil {
		return "", "", err
	}
	return name, message, nil
}

// requiredText trims raw and checks it is non-empty and at most limit runes.
// label starts the user-facing message.
func requiredText(field, label, raw string, limit int) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", domerrors.NewValidationError(field, label+" es obligatorio.")
	}
	if utf8.RuneCountInString(value) > limit {
		return "", domerrors.NewValidationError(field, fmt.Sprintf("%s no puede superar %d caracteres.", label, limit))
	}
	return value, nil
}
