package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	webModels "energydash/internal/web/models"
)

func respondOK(c *gin.Context, data interface{}, message string) {
	raw, err := json.Marshal(data)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "encoding error", err.Error())
		return
	}
	c.JSON(http.StatusOK, webModels.SuccessResponse{
		Success: true,
		Data:    raw,
		Message: message,
	})
}

func respondError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, webModels.ErrorResponse{
		Success: false,
		Error: webModels.ErrorBody{
			Code:    ErrorCode(status),
			Status:  status,
			Message: message,
			Details: details,
		},
	})
}

// ErrorCode turns an HTTP status into an upper snake case code, e.g.
// 404 -> NOT_FOUND
func ErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
