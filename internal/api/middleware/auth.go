package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/pkg/jwt"
	"github.com/soumitjana/soumitjana.github.io/pkg/redis"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// 注入 gin.Context 的认证信息键
const (
	CtxUserID         = "user_id"
	CtxUsername       = "username"
	CtxTokenID        = "token_id"
	CtxTokenExpiresAt = "token_expires_at"
)

// AccessTokenCookie 页面访问使用的 Token Cookie 名
const AccessTokenCookie = "access_token"

// extractToken 优先读取 Authorization: Bearer <token>，其次读取 Cookie
func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, true
	}
	return "", false
}

// authenticate 校验 Token 并检查黑名单；rdb 为 nil 或出错时跳过黑名单检查
func authenticate(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client) (*jwt.Claims, string) {
	token, ok := extractToken(c)
	if !ok {
		return nil, "缺少认证信息"
	}

	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		return nil, "Token 无效或已过期"
	}

	if rdb != nil && claims.ID != "" {
		blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err == nil && blacklisted {
			return nil, "Token 已注销"
		}
	}
	return claims, ""
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExpiresAt, claims.ExpiresAt.Time)
	} else {
		c.Set(CtxTokenExpiresAt, time.Time{})
	}
}

// JWTAuth JWT 认证中间件，未认证时返回 401
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, reason := authenticate(c, jwtMgr, rdb)
		if claims == nil {
			response.Unauthorized(c, 10002, reason)
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证：Token 有效时注入用户信息，否则按匿名用户继续
func OptionalAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := authenticate(c, jwtMgr, rdb); claims != nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}
