package handler

import (
	"github.com/gin-gonic/gin"
)

// errorResponse is the uniform error envelope for every non-2xx reply.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	// Code is a stable machine-checkable string, never free text.
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detail carries structured mismatch data where a code defines any.
	Detail any `json:"detail,omitempty"`
}

// abortWithError writes the error envelope and stops the handler chain.
// The original error is attached to the gin context for the logging layer.
func abortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{
		Code:    code,
		Message: msg,
		Detail:  detail,
	}})
}
