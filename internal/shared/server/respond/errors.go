package respond

import (
	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/shared/telemetry"
)

// ErrorResponse is the error body returned to clients. Raw carries the
// unparsed model output when a response could not be validated.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Raw     string      `json:"raw,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	Failure(c, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// Failure logs and aborts with a fully populated error body.
func Failure(c *gin.Context, status int, body ErrorResponse) {
	fields := map[string]any{
		"status":     status,
		"code":       body.Code,
		"message":    body.Error,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if id := c.GetString("submissionId"); id != "" {
		fields["submission_id"] = id
	}
	if body.Raw != "" {
		fields["raw_len"] = len(body.Raw)
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, body)
}
