package handler

import (
	"net/http"

	"Confizz/internal/middleware"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	svc    *service.CommentService
	logger *zap.Logger
}

type CreateCommentReq struct {
	Content string `json:"content" form:"content"`
}

func NewCommentHandler(svc *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

// Create 登录可选，登录则记录作者
func (h *CommentHandler) Create(c *gin.Context) {
	confessionID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "confession not found"})
		return
	}
	var req CreateCommentReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), confessionID, req.Content, middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *CommentHandler) List(c *gin.Context) {
	confessionID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "confession not found"})
		return
	}
	list, err := h.svc.ListComments(c.Request.Context(), confessionID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
