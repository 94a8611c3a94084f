package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiolane/studiolane-backend/internal/svcerr"
)

// Every response carries the same envelope: success, a human message, and
// operation-specific fields merged alongside.
func RespondOK(c *gin.Context, message string, fields gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondErr maps a service error onto the fixed status set. Storage
// internals never reach the wire.
func RespondErr(c *gin.Context, err error) {
	c.JSON(svcerr.HTTPStatus(err), gin.H{
		"success": false,
		"message": svcerr.Message(err),
	})
}

func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
