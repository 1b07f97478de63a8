package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase pairs a sentinel error with the status and message a handler
// returns for it. Handlers declare their mapping tables inline at the
// call site.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError walks the cases in order and writes the first one
// the error matches. Anything unmapped gets the fallback response, keeping
// internal error text off the wire.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, mapped := range cases {
		if mapped.Err == nil {
			continue
		}
		if errors.Is(err, mapped.Err) {
			c.JSON(mapped.Status, NewErrorResponse(c, mapped.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
