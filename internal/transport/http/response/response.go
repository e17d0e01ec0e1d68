package response

import (
	"github.com/gin-gonic/gin"

	"sweetshop/internal/apperr"
)

// Abort 统一错误出口：真实 HTTP 状态码 + {"error": msg}
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// AbortError 业务错误映射；未识别的错误一律 500，不透出内部细节
func AbortError(c *gin.Context, err error) {
	Abort(c, apperr.Status(err), apperr.Message(err))
}
