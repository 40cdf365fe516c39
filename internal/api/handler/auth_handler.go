package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/api/middleware"
	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc   service.AuthService
	cookieCfg *config.CookieConfig
}

// NewAuthHandler 创建 AuthHandler
// cookieCfg 为 nil 时使用默认值（Secure=false, SameSite=Lax）
func NewAuthHandler(authSvc service.AuthService, cookieCfg *config.CookieConfig) *AuthHandler {
	if cookieCfg == nil {
		cookieCfg = &config.CookieConfig{SameSite: "Lax"}
	}
	return &AuthHandler{authSvc: authSvc, cookieCfg: cookieCfg}
}

// Login 用户登录，同时写入 HttpOnly Cookie 供页面使用
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	h.setTokenCookie(c, result.AccessToken, result.ExpiresIn)
	response.OK(c, result)
}

// Logout 用户登出：Token 加入黑名单并清除 Cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	h.setTokenCookie(c, "", -1)
	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11002, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(parseSameSite(h.cookieCfg.SameSite))
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
