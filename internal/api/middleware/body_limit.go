package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// BodyLimit 请求体大小限制中间件（表单、批量提交与快照预览共用）
// 声明长度超限时直接返回 413；未声明长度的请求体在读取时截断
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
