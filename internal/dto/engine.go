package dto

// ── 引擎模块 DTO ──

// EngineStatusResponse 引擎调用的统一结果
// response_status 为 "OK" 时前端状态横幅显示为正常
type EngineStatusResponse struct {
	ResponseStatus string `json:"response_status"`
	StatusText     string `json:"status_text"`
}
