package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ghexplorer/github"
	"ghexplorer/models"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// writeError maps err onto a status code and ErrorResponse.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, code := http.StatusBadGateway, "upstream_error"
	message := github.Message(err)

	switch {
	case errors.Is(err, github.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, github.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, github.ErrInvalidQuery):
		status, code = http.StatusUnprocessableEntity, "invalid_query"
	case errors.Is(err, models.ErrInvalidFilters):
		status, code, message = http.StatusBadRequest, "invalid_request", "Invalid search filters."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "timeout", "The request was cancelled."
	}

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: "invalid_request", Message: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
