package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects bodies that are not declared as application/json.
func RequireJSON() gin.HandlerFunc {
	return requireContentType("application/json", "Content-Type must be application/json")
}

// RequireMultipart guards the event form endpoints.
func RequireMultipart() gin.HandlerFunc {
	return requireContentType("multipart/form-data", "Content-Type must be multipart/form-data")
}

func requireContentType(want, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || mt != want {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": message,
					},
				})
				return
			}
		}
		c.Next()
	}
}
