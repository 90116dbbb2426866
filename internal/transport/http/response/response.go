package response

import "github.com/gin-gonic/gin"

// ErrorBody is the shape of every non-2xx response.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func Message(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, MessageBody{Message: message})
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Message: message})
}

// ValidationFailed answers 400 with a field-level error map.
func ValidationFailed(c *gin.Context, message string, fields map[string]string) {
	c.JSON(400, ErrorBody{Message: message, Errors: fields})
}
