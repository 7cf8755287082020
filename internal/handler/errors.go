package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Confizz/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf 按错误分类映射状态码；未分类的一律 500
func statusOf(err error) int {
	switch {
	case errors.Is(err, pkg.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, pkg.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkg.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError 领域错误直接回消息，基础设施错误只记日志不外泄
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"msg": pkg.Message(err, "internal error")})
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
