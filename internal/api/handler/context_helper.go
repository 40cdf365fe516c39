package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/internal/api/middleware"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return uid, true
}

// OptionalIdentity 返回可选认证注入的用户信息，匿名请求返回空字符串
func OptionalIdentity(c *gin.Context) (userID, username string) {
	return c.GetString(middleware.CtxUserID), c.GetString(middleware.CtxUsername)
}

// tokenMeta 当前请求 Token 的 JTI 与过期时间（登出使用）
func tokenMeta(c *gin.Context) (string, time.Time) {
	var exp time.Time
	if v, ok := c.Get(middleware.CtxTokenExpiresAt); ok {
		exp, _ = v.(time.Time)
	}
	return c.GetString(middleware.CtxTokenID), exp
}
