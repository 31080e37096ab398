package service

import (
	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Criterion CriterionService
	Parameter ParameterService
	Action    ActionService
	Rule      RuleService
	Engine    EngineService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	engineClient EngineCaller,
	notices NoticeStore,
	logger *zap.Logger,
) *Service {
	engineSvc := NewEngineService(engineClient, notices, logger)
	return &Service{
		Criterion: NewCriterionService(repo, logger),
		Parameter: NewParameterService(repo, logger),
		Action:    NewActionService(repo, logger),
		Rule:      NewRuleService(repo, engineSvc, logger),
		Engine:    engineSvc,
		Export:    NewExportService(repo, logger),
	}
}
