package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

// ParameterHandler 参数模块 HTTP 处理器
type ParameterHandler struct {
	parameterSvc service.ParameterService
}

// NewParameterHandler 创建 ParameterHandler
func NewParameterHandler(parameterSvc service.ParameterService) *ParameterHandler {
	return &ParameterHandler{parameterSvc: parameterSvc}
}

// ListParameters 获取参数列表
// GET /api/v1/parameters
func (h *ParameterHandler) ListParameters(c *gin.Context) {
	parameters, err := h.parameterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": parameters})
}

// GetParameter 获取参数详情
// GET /api/v1/parameters/:name
func (h *ParameterHandler) GetParameter(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "参数名称不能为空")
		return
	}

	parameter, err := h.parameterSvc.GetByName(c.Request.Context(), name)
	if err != nil {
		h.handleParameterError(c, err)
		return
	}

	response.OK(c, parameter)
}

// CreateParameter 创建参数
// POST /api/v1/parameters
func (h *ParameterHandler) CreateParameter(c *gin.Context) {
	var req dto.CreateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	parameter, err := h.parameterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleParameterError(c, err)
		return
	}

	response.Created(c, parameter)
}

// UpdateParameter 更新参数
// PUT /api/v1/parameters/:name
func (h *ParameterHandler) UpdateParameter(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "参数名称不能为空")
		return
	}

	var req dto.UpdateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	parameter, err := h.parameterSvc.Update(c.Request.Context(), name, &req)
	if err != nil {
		h.handleParameterError(c, err)
		return
	}

	response.OK(c, parameter)
}

// DeleteParameter 删除参数
// DELETE /api/v1/parameters/:name
func (h *ParameterHandler) DeleteParameter(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "参数名称不能为空")
		return
	}

	if err := h.parameterSvc.Delete(c.Request.Context(), name); err != nil {
		h.handleParameterError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleParameterError 统一处理参数模块业务错误
func (h *ParameterHandler) handleParameterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrParameterNotFound):
		response.NotFound(c, 12001, "参数不存在")
	case errors.Is(err, service.ErrParameterExists):
		response.Conflict(c, 12002, "同名参数已存在")
	case errors.Is(err, service.ErrParameterBadType):
		response.BadRequest(c, 12003, "不支持的参数数据类型")
	default:
		response.InternalError(c)
	}
}
