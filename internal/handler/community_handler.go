package handler

import (
	"net/http"

	"Confizz/internal/middleware"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommunityHandler struct {
	svc         *service.CommunityService
	confessions *service.ConfessionService
	logger      *zap.Logger
}

type CommunityCreateReq struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description"`
}

func NewCommunityHandler(svc *service.CommunityService, confessions *service.ConfessionService, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{svc: svc, confessions: confessions, logger: logger}
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.svc.ListCommunities(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "community name required"})
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Community created successfully!", "community": community})
}

// Detail 社区信息 + 社区内告白
func (h *CommunityHandler) Detail(c *gin.Context) {
	community, list, err := h.confessions.ListForCommunity(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community, "confessions": list})
}

// ConfirmDelete GET 只返回待删除的社区；非创建者一律 403
func (h *CommunityHandler) ConfirmDelete(c *gin.Context) {
	community, err := h.svc.ConfirmDelete(c.Request.Context(), c.Param("slug"), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteCommunity(c.Request.Context(), c.Param("slug"), middleware.UserID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Community deleted successfully!"})
}
