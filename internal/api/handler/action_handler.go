package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

// ActionHandler 动作模块 HTTP 处理器
type ActionHandler struct {
	actionSvc service.ActionService
}

// NewActionHandler 创建 ActionHandler
func NewActionHandler(actionSvc service.ActionService) *ActionHandler {
	return &ActionHandler{actionSvc: actionSvc}
}

// ListActions 获取动作列表
// GET /api/v1/actions
func (h *ActionHandler) ListActions(c *gin.Context) {
	actions, err := h.actionSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": actions})
}

// GetAction 获取动作详情
// GET /api/v1/actions/:name
func (h *ActionHandler) GetAction(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "动作名称不能为空")
		return
	}

	action, err := h.actionSvc.GetByName(c.Request.Context(), name)
	if err != nil {
		h.handleActionError(c, err)
		return
	}

	response.OK(c, action)
}

// GetActionParameterFields 获取动作签名的表单字段描述
// GET /api/v1/actions/:name/parameters
// 前端为规则动作选定动作后，用这份字段描述渲染参数输入框
func (h *ActionHandler) GetActionParameterFields(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "动作名称不能为空")
		return
	}

	fields, err := h.actionSvc.ParameterFields(c.Request.Context(), name)
	if err != nil {
		h.handleActionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": fields})
}

// CreateAction 创建动作
// POST /api/v1/actions
func (h *ActionHandler) CreateAction(c *gin.Context) {
	var req dto.CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	action, err := h.actionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleActionError(c, err)
		return
	}

	response.Created(c, action)
}

// UpdateAction 更新动作
// PUT /api/v1/actions/:name
func (h *ActionHandler) UpdateAction(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "动作名称不能为空")
		return
	}

	var req dto.UpdateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	action, err := h.actionSvc.Update(c.Request.Context(), name, &req)
	if err != nil {
		h.handleActionError(c, err)
		return
	}

	response.OK(c, action)
}

// DeleteAction 删除动作
// DELETE /api/v1/actions/:name
func (h *ActionHandler) DeleteAction(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "动作名称不能为空")
		return
	}

	if err := h.actionSvc.Delete(c.Request.Context(), name); err != nil {
		h.handleActionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleActionError 统一处理动作模块业务错误
func (h *ActionHandler) handleActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActionNotFound):
		response.NotFound(c, 13001, "动作不存在")
	case errors.Is(err, service.ErrActionExists):
		response.Conflict(c, 13002, "同名动作已存在")
	case errors.Is(err, service.ErrActionUnknownParameter):
		response.BadRequest(c, 13003, "签名引用了不存在的参数")
	case errors.Is(err, service.ErrActionDuplicateNumber):
		response.BadRequest(c, 13004, "签名内参数序号重复")
	default:
		response.InternalError(c)
	}
}
