package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(code, body)
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// AbortRedirect stops the chain and tells the client where to send the user.
func AbortRedirect(c *gin.Context, code int, message, redirect string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "redirect": redirect})
}
