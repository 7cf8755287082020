package handler

import (
	"errors"
	"net/http"

	"Confizz/internal/pkg"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SummaryHandler struct {
	svc    *service.SummaryService
	logger *zap.Logger
}

type SummarizeReq struct {
	CommentsText string `json:"comments_text"`
}

func NewSummaryHandler(svc *service.SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{svc: svc, logger: logger}
}

// Summarize 返回 {summary} 或 {error}；输入问题 400，配置缺失或上游失败 500
func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req SummarizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), req.CommentsText)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pkg.ErrValidation) {
			status = http.StatusBadRequest
		} else {
			h.logger.Warn("summarize failed", zap.String("confession", c.Param("id")), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": pkg.Message(err, err.Error())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
