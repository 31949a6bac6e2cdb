package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

type Response struct {
	Status      string      `json:"status"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	ConflictIDs []string    `json:"conflicting_appointment_ids,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps domain errors to their HTTP status. Scheduling
// conflicts carry the ids of the appointments that block the slot.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	resp := NewErrorResponse(appErr.Message)
	for _, id := range appErr.ConflictIDs {
		resp.ConflictIDs = append(resp.ConflictIDs, id.String())
	}
	c.JSON(appErr.StatusCode(), resp)
}
