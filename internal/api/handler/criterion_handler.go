package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

// CriterionHandler 条件模块 HTTP 处理器
type CriterionHandler struct {
	criterionSvc service.CriterionService
}

// NewCriterionHandler 创建 CriterionHandler
func NewCriterionHandler(criterionSvc service.CriterionService) *CriterionHandler {
	return &CriterionHandler{criterionSvc: criterionSvc}
}

// ListCriteria 获取条件列表
// GET /api/v1/criteria
func (h *CriterionHandler) ListCriteria(c *gin.Context) {
	criteria, err := h.criterionSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": criteria})
}

// GetCriterion 获取条件详情
// GET /api/v1/criteria/:name
func (h *CriterionHandler) GetCriterion(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "条件名称不能为空")
		return
	}

	criterion, err := h.criterionSvc.GetByName(c.Request.Context(), name)
	if err != nil {
		h.handleCriterionError(c, err)
		return
	}

	response.OK(c, criterion)
}

// CreateCriterion 创建条件
// POST /api/v1/criteria
func (h *CriterionHandler) CreateCriterion(c *gin.Context) {
	var req dto.CreateCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	criterion, err := h.criterionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCriterionError(c, err)
		return
	}

	response.Created(c, criterion)
}

// UpdateCriterion 更新条件
// PUT /api/v1/criteria/:name
func (h *CriterionHandler) UpdateCriterion(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "条件名称不能为空")
		return
	}

	var req dto.UpdateCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	criterion, err := h.criterionSvc.Update(c.Request.Context(), name, &req)
	if err != nil {
		h.handleCriterionError(c, err)
		return
	}

	response.OK(c, criterion)
}

// DeleteCriterion 删除条件
// DELETE /api/v1/criteria/:name
func (h *CriterionHandler) DeleteCriterion(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "条件名称不能为空")
		return
	}

	if err := h.criterionSvc.Delete(c.Request.Context(), name); err != nil {
		h.handleCriterionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCriterionError 统一处理条件模块业务错误
func (h *CriterionHandler) handleCriterionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCriterionNotFound):
		response.NotFound(c, 11001, "条件不存在")
	case errors.Is(err, service.ErrCriterionExists):
		response.Conflict(c, 11002, "同名条件已存在")
	default:
		response.InternalError(c)
	}
}
