package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/http/middleware"
)

const msgInternal = "Internal server error"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// RespondDomainError maps domain errors to HTTP responses. Upstream causes are
// logged and never sent to the client.
func RespondDomainError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, msgInternal)
	}
}
