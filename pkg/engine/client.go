// Package engine 封装对外部规则引擎的 REST 调用。
// 引擎负责条件求值与动作执行，本服务只查询其状态并在规则集变更后触发重载。
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/config"
)

// 引擎 REST 端点路径
const (
	statusPath = "/rules_engine/engine/status"
	reloadPath = "/rules_engine/engine/reload"
)

// 引擎返回的重载状态与对应的提示文案
// 这些字面量是与前端的显示契约，状态横幅按 ResponseStatus == "OK" 着色
const (
	StatusOK             = "OK"
	ReloadSucceededText  = "Ruleset successfully reloaded"
	ReloadFailedText     = "Ruleset was not reloaded"
	ConnectionErrorLabel = "Connection Error"
	RequestErrorLabel    = "Request Error"
)

// Result 单次引擎调用的统一结果
type Result struct {
	ResponseStatus string `json:"response_status"`
	StatusText     string `json:"status_text"`
}

// Succeeded 引擎调用是否成功（HTTP 200）
func (r Result) Succeeded() bool {
	return r.ResponseStatus == StatusOK
}

// engineResponse 引擎两个端点共用的响应体
type engineResponse struct {
	Status string `json:"status"`
}

// reloadRequest 重载请求体，携带引擎侧校验的共享密钥
type reloadRequest struct {
	AccessCode string `json:"accessCode"`
}

// Client 引擎 REST 客户端
type Client struct {
	baseURL    string
	accessCode string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建引擎客户端，超时时间来自配置（默认 10 秒）
func NewClient(cfg *config.EngineConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accessCode: cfg.AccessCode,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Status 查询引擎当前状态
func (c *Client) Status(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, nil)
	if err != nil {
		return Result{ResponseStatus: RequestErrorLabel, StatusText: err.Error()}
	}
	return c.call(req, false)
}

// Reload 触发引擎重载规则集
func (c *Client) Reload(ctx context.Context) Result {
	body, err := json.Marshal(reloadRequest{AccessCode: c.accessCode})
	if err != nil {
		return Result{ResponseStatus: RequestErrorLabel, StatusText: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+reloadPath,
		bytes.NewReader(body))
	if err != nil {
		return Result{ResponseStatus: RequestErrorLabel, StatusText: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.call(req, true)
}

// call 执行请求并把各种结果映射为统一的 Result
//
// 映射约定（与依赖方 UI 的显示逻辑一致，不可改动）：
//   - HTTP 200 + 重载返回 OK/FAILED  → 对应的固定文案
//   - HTTP 200 + 其他状态字符串       → 原样透传
//   - HTTP 非 200                    → "Error Code {code}" + 原因短语
//   - 连接被拒绝 / 不可达             → "Connection Error" + 底层错误明细
//   - 其余传输异常                    → "Request Error" + 错误字符串
func (c *Client) call(req *http.Request, isReload bool) Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(req, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("引擎返回非 200 状态",
			zap.String("url", req.URL.Path),
			zap.Int("status_code", resp.StatusCode),
		)
		return Result{
			ResponseStatus: fmt.Sprintf("Error Code %d", resp.StatusCode),
			StatusText:     reasonPhrase(resp),
		}
	}

	var body engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{ResponseStatus: RequestErrorLabel, StatusText: err.Error()}
	}

	text := body.Status
	if isReload {
		switch body.Status {
		case "OK":
			text = ReloadSucceededText
		case "FAILED":
			text = ReloadFailedText
		}
	}
	return Result{ResponseStatus: StatusOK, StatusText: text}
}

// transportError 区分连接级错误与其他传输异常
func (c *Client) transportError(req *http.Request, err error) Result {
	c.logger.Warn("引擎调用失败",
		zap.String("url", req.URL.Path),
		zap.Error(err),
	)

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		detail := opErr.Error()
		if opErr.Err != nil {
			detail = opErr.Err.Error()
		}
		return Result{ResponseStatus: ConnectionErrorLabel, StatusText: detail}
	}
	return Result{ResponseStatus: RequestErrorLabel, StatusText: err.Error()}
}

// reasonPhrase 提取 HTTP 原因短语，优先使用服务端返回的 Status 行
func reasonPhrase(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if strings.HasPrefix(resp.Status, prefix) {
		return strings.TrimPrefix(resp.Status, prefix)
	}
	return http.StatusText(resp.StatusCode)
}
