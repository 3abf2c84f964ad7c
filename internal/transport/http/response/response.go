package response

import "github.com/gin-gonic/gin"

// ErrorBody is the uniform failure shape: a human-readable error string
// plus optional upstream details. The frontend shows the string verbatim.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

func ErrorWithDetails(c *gin.Context, httpStatus int, message, details string) {
	c.JSON(httpStatus, ErrorBody{Error: message, Details: details})
}
