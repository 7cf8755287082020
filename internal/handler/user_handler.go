package handler

import (
	"net/http"

	"Confizz/internal/middleware"
	"Confizz/internal/model"
	"Confizz/internal/pkg"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc      *service.UserService
	sessions *pkg.SessionManager
	logger   *zap.Logger
}

// SignupReq 注册请求体
type SignupReq struct {
	Username        string `json:"username" form:"username" binding:"required"`
	Email           string `json:"email" form:"email" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" binding:"required"`
}

type LoginReq struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewUserHandler(svc *service.UserService, sessions *pkg.SessionManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions, logger: logger}
}

// Signup 注册成功后直接登录
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "the two password fields didn't match"})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	_, pair, err := h.svc.Login(c.Request.Context(), user.Username, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondLoggedIn(c, http.StatusCreated, "Account created successfully!", user, pair)
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondLoggedIn(c, http.StatusOK, "Logged in successfully!", user, pair)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.UserID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out successfully!"})
}

// TokenRefresh 利用 refresh 换新的 access
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"msg": "change password successfully"})
}

func (h *UserHandler) respondLoggedIn(c *gin.Context, status int, msg string, user *model.User, pair *pkg.Pair) {
	if err := h.sessions.Save(c.Writer, c.Request, user.ID, pair.AccessToken); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(status, gin.H{
		"msg":           msg,
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
