package dto

import "github.com/robert-f-ruff/rules-engine/internal/fieldspec"

// ── 动作模块 DTO ──

// ActionParameterInput 动作参数签名条目
type ActionParameterInput struct {
	Parameter       string `json:"parameter"        binding:"required,max=30"`
	ParameterNumber int    `json:"parameter_number" binding:"required,gt=0"`
}

// CreateActionRequest 创建动作请求
// 参数签名与动作本体一并原子保存
type CreateActionRequest struct {
	Name       string                 `json:"name"     binding:"required,max=30"`
	Function   string                 `json:"function" binding:"required,max=30"`
	Parameters []ActionParameterInput `json:"parameters" binding:"dive"`
}

// UpdateActionRequest 更新动作请求
// Parameters 非 nil 时整体替换参数签名
type UpdateActionRequest struct {
	Function   *string                 `json:"function" binding:"omitempty,min=1,max=30"`
	Parameters *[]ActionParameterInput `json:"parameters" binding:"omitempty,dive"`
}

// ActionParameterResponse 动作参数签名响应条目
type ActionParameterResponse struct {
	ParameterNumber int            `json:"parameter_number"`
	Parameter       string         `json:"parameter"`
	Field           fieldspec.Spec `json:"field"`
}

// ActionResponse 动作信息响应
type ActionResponse struct {
	Name       string                    `json:"name"`
	Function   string                    `json:"function"`
	Parameters []ActionParameterResponse `json:"parameters"`
	CreatedAt  string                    `json:"created_at"`
	UpdatedAt  string                    `json:"updated_at"`
}
