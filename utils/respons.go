package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondJSON writes the success envelope: success flag, message and the
// entity fields under their own keys (order, orders + count, table, ...).
func RespondJSON(c *gin.Context, code int, message string, data gin.H) {
	body := gin.H{
		"success": code >= 200 && code < 300,
		"message": message,
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(code, body)
}

func RespondError(c *gin.Context, code int, err error) {
	RespondMessage(c, code, err.Error())
}

func RespondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"message": message,
	})
}
