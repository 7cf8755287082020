package handler

import (
	"net/http"

	"Confizz/internal/middleware"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConfessionHandler struct {
	svc    *service.ConfessionService
	logger *zap.Logger
}

type CreateConfessionReq struct {
	Content   string `json:"content" form:"content"`
	Community string `json:"community" form:"community"`
}

func NewConfessionHandler(svc *service.ConfessionService, logger *zap.Logger) *ConfessionHandler {
	return &ConfessionHandler{svc: svc, logger: logger}
}

// Feed 全站流，支持 search 和 date_filter
func (h *ConfessionHandler) Feed(c *gin.Context) {
	search := c.Query("search")
	dateFilter := c.Query("date_filter")

	list, err := h.svc.ListGlobal(c.Request.Context(), search, dateFilter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"list":        list,
		"search":      search,
		"date_filter": dateFilter,
	})
}

// PostAnonymous 全站流发帖永远匿名，即使请求带了登录态
func (h *ConfessionHandler) PostAnonymous(c *gin.Context) {
	h.create(c, 0, "Your anonymous confession has been posted!")
}

// Dashboard 只看自己的告白，身份只取自登录态
func (h *ConfessionHandler) Dashboard(c *gin.Context) {
	list, err := h.svc.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *ConfessionHandler) PostAsUser(c *gin.Context) {
	h.create(c, middleware.UserID(c), "Your confession has been posted!")
}

func (h *ConfessionHandler) create(c *gin.Context, authorID uint64, okMsg string) {
	var req CreateConfessionReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	confession, err := h.svc.CreateConfession(c.Request.Context(), req.Content, authorID, req.Community)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": okMsg, "confession": confession})
}
