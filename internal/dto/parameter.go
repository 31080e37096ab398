package dto

import "github.com/robert-f-ruff/rules-engine/internal/fieldspec"

// ── 参数模块 DTO ──

// CreateParameterRequest 创建参数请求
type CreateParameterRequest struct {
	Name     string `json:"name"      binding:"required,max=30"`
	DataType string `json:"data_type" binding:"required,oneof=boolean date datetime email number phone text time"`
	Required bool   `json:"required"`
	HelpText string `json:"help_text"`
}

// UpdateParameterRequest 更新参数请求
type UpdateParameterRequest struct {
	DataType *string `json:"data_type" binding:"omitempty,oneof=boolean date datetime email number phone text time"`
	Required *bool   `json:"required"`
	HelpText *string `json:"help_text"`
}

// ParameterResponse 参数信息响应
// Field 是按当前元数据合成的表单字段描述
type ParameterResponse struct {
	Name      string         `json:"name"`
	DataType  string         `json:"data_type"`
	Required  bool           `json:"required"`
	HelpText  string         `json:"help_text"`
	Field     fieldspec.Spec `json:"field"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}
