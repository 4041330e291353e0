package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/upload"
)

func principalFromContext(c *gin.Context) (upload.Principal, bool) {
	id, exists := c.Get("user_id")
	if !exists {
		return upload.Principal{}, false
	}
	email, _ := c.Get("user_email")
	emailStr, _ := email.(string)
	return upload.Principal{ID: id.(string), Email: emailStr}, true
}
