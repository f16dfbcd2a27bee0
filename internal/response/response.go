package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. The "error" key carries
// the human-readable message clients display.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      ErrCode           `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Success sends data as the JSON body with the given status code.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Fail sends an error response with the code's default message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, build(c, code, GetMessage(code), nil))
}

// FailWithMessage sends an error response with a caller-supplied message,
// used to surface the underlying store error.
func FailWithMessage(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.JSON(statusCode, build(c, code, message, nil))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, build(c, code, GetMessage(code), fields))
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, build(c, code, GetMessage(code), nil))
}

func build(c *gin.Context, code ErrCode, message string, fields map[string]string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      code,
		Fields:    fields,
		RequestID: c.GetString(ContextKeyRequestID),
	}
}
