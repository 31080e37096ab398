package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/pkg/engine"
)

// EngineCaller 引擎 REST 客户端依赖（pkg/engine.Client 实现）
type EngineCaller interface {
	Status(ctx context.Context) engine.Result
	Reload(ctx context.Context) engine.Result
}

// NoticeStore 一次性引擎提示的暂存（pkg/redis.Client 实现）
type NoticeStore interface {
	SetEngineNotice(ctx context.Context, text string) error
	TakeEngineNotice(ctx context.Context) (string, error)
}

// EngineService 引擎交互业务接口
// 引擎调用失败从不阻断规则保存，一律降级为可见的状态文本
type EngineService interface {
	Status(ctx context.Context) dto.EngineStatusResponse
	Reload(ctx context.Context) dto.EngineStatusResponse
	// ReloadAndNotify 触发重载并把结果暂存为下一次列表加载的一次性提示
	ReloadAndNotify(ctx context.Context) dto.EngineStatusResponse
	// TakeNotice 消费待展示的一次性提示，没有则返回空字符串
	TakeNotice(ctx context.Context) string
}

type engineService struct {
	client  EngineCaller
	notices NoticeStore
	logger  *zap.Logger
}

// NewEngineService 创建 EngineService 实例
// notices 允许为 nil（Redis 不可用时提示功能降级，保存流程不受影响）
func NewEngineService(client EngineCaller, notices NoticeStore, logger *zap.Logger) EngineService {
	return &engineService{client: client, notices: notices, logger: logger}
}

func (s *engineService) Status(ctx context.Context) dto.EngineStatusResponse {
	return toEngineResponse(s.client.Status(ctx))
}

func (s *engineService) Reload(ctx context.Context) dto.EngineStatusResponse {
	return toEngineResponse(s.client.Reload(ctx))
}

func (s *engineService) ReloadAndNotify(ctx context.Context) dto.EngineStatusResponse {
	result := s.client.Reload(ctx)
	if s.notices != nil {
		if err := s.notices.SetEngineNotice(ctx, result.StatusText); err != nil {
			s.logger.Warn("暂存引擎提示失败", zap.Error(err))
		}
	}
	return toEngineResponse(result)
}

func (s *engineService) TakeNotice(ctx context.Context) string {
	if s.notices == nil {
		return ""
	}
	text, err := s.notices.TakeEngineNotice(ctx)
	if err != nil {
		s.logger.Warn("读取引擎提示失败", zap.Error(err))
		return ""
	}
	return text
}

func toEngineResponse(result engine.Result) dto.EngineStatusResponse {
	return dto.EngineStatusResponse{
		ResponseStatus: result.ResponseStatus,
		StatusText:     result.StatusText,
	}
}
