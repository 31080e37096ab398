package dto

// ── 条件模块 DTO ──

// CreateCriterionRequest 创建条件请求
type CreateCriterionRequest struct {
	Name  string `json:"name"  binding:"required,max=30"`
	Logic string `json:"logic" binding:"required"`
}

// UpdateCriterionRequest 更新条件请求
type UpdateCriterionRequest struct {
	Logic *string `json:"logic" binding:"omitempty,min=1"`
}

// CriterionResponse 条件信息响应
type CriterionResponse struct {
	Name      string `json:"name"`
	Logic     string `json:"logic"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
