package response

import "github.com/gin-gonic/gin"

// The portal backend speaks FastAPI conventions: success bodies are the bare
// resource, failures are {"detail": "..."}.

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
}

func Abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"detail": message})
}
