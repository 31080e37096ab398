package handler

import "github.com/robert-f-ruff/rules-engine/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Criterion *CriterionHandler
	Parameter *ParameterHandler
	Action    *ActionHandler
	Rule      *RuleHandler
	Engine    *EngineHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Criterion: NewCriterionHandler(svc.Criterion),
		Parameter: NewParameterHandler(svc.Parameter),
		Action:    NewActionHandler(svc.Action),
		Rule:      NewRuleHandler(svc.Rule),
		Engine:    NewEngineHandler(svc.Engine),
		Export:    NewExportHandler(svc.Export),
	}
}
