package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

// RuleHandler 规则模块 HTTP 处理器
type RuleHandler struct {
	ruleSvc service.RuleService
}

// NewRuleHandler 创建 RuleHandler
func NewRuleHandler(ruleSvc service.RuleService) *RuleHandler {
	return &RuleHandler{ruleSvc: ruleSvc}
}

// ListRules 获取规则列表（含引擎状态与一次性提示）
// GET /api/v1/rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	result, err := h.ruleSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetRule 获取规则详情
// GET /api/v1/rules/:id
func (h *RuleHandler) GetRule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "规则ID不能为空")
		return
	}

	rule, err := h.ruleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// CreateRule 创建规则
// POST /api/v1/rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req dto.SaveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ruleSvc.Save(c.Request.Context(), "", &req)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateRule 保存规则编辑
// PUT /api/v1/rules/:id
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "规则ID不能为空")
		return
	}

	var req dto.SaveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ruleSvc.Save(c.Request.Context(), id, &req)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRule 删除规则
// DELETE /api/v1/rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "规则ID不能为空")
		return
	}

	engineResp, err := h.ruleSvc.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, gin.H{"engine": engineResp})
}

// handleRuleError 统一处理规则模块业务错误
// 校验错误以结构化详情回传，前端按子表单定位到具体字段
func (h *RuleHandler) handleRuleError(c *gin.Context, err error) {
	var validation *service.RuleValidationError
	switch {
	case errors.As(err, &validation):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14001, "规则校验未通过", validation.Errors)
	case errors.Is(err, service.ErrRuleNotFound):
		response.NotFound(c, 14002, "规则不存在")
	case errors.Is(err, service.ErrRuleSaveConflict):
		response.Conflict(c, 14003, "动作序号冲突，整次保存已回滚")
	default:
		response.InternalError(c)
	}
}
