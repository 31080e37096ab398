package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

// EngineHandler 引擎模块 HTTP 处理器
// 引擎调用失败不映射为 HTTP 错误：状态文本本身就是给用户看的结果
type EngineHandler struct {
	engineSvc service.EngineService
}

// NewEngineHandler 创建 EngineHandler
func NewEngineHandler(engineSvc service.EngineService) *EngineHandler {
	return &EngineHandler{engineSvc: engineSvc}
}

// GetStatus 查询引擎状态
// GET /api/v1/engine/status
func (h *EngineHandler) GetStatus(c *gin.Context) {
	response.OK(c, h.engineSvc.Status(c.Request.Context()))
}

// Reload 手动触发引擎重载
// POST /api/v1/engine/reload
func (h *EngineHandler) Reload(c *gin.Context) {
	response.OK(c, h.engineSvc.Reload(c.Request.Context()))
}
