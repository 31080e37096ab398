package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/fieldspec"
	"github.com/robert-f-ruff/rules-engine/internal/model"
	"github.com/robert-f-ruff/rules-engine/internal/repository"
)

// ── 规则模块业务错误 ──

var (
	ErrRuleNotFound = errors.New("规则不存在")
	// ErrRuleSaveConflict 提交的动作序号与既有记录冲突（存储层唯一约束兜底）
	ErrRuleSaveConflict = errors.New("动作序号冲突，整次保存已回滚")
)

// ActDeleteParameterChange 同一个动作子表单同时携带删除标记和参数修改时的报错文本。
// 引擎侧依赖这段原文，不做本地化。
const ActDeleteParameterChange = "Cannot change parameter and delete the associated action at the same time."

// RuleValidationError 保存请求校验未通过
// Errors 按子表单分组，定位到具体字段
type RuleValidationError struct {
	Errors *dto.SaveRuleErrors
}

func (e *RuleValidationError) Error() string { return "规则校验未通过" }

// RuleService 规则业务接口
// Save 是整个系统的核心路径：全量校验 → 单事务写入 → 变更时触发引擎重载
type RuleService interface {
	List(ctx context.Context) (*dto.RuleListResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RuleResponse, error)
	// Save 保存规则，id 为空表示创建
	// 校验失败返回 *RuleValidationError，任何记录都不会写入
	Save(ctx context.Context, id string, req *dto.SaveRuleRequest) (*dto.SaveRuleResponse, error)
	Delete(ctx context.Context, id string) (*dto.EngineStatusResponse, error)
}

type ruleService struct {
	repo   *repository.Repository
	engine EngineService
	logger *zap.Logger
}

// NewRuleService 创建 RuleService 实例
func NewRuleService(repo *repository.Repository, engine EngineService, logger *zap.Logger) RuleService {
	return &ruleService{repo: repo, engine: engine, logger: logger}
}

func (s *ruleService) List(ctx context.Context) (*dto.RuleListResponse, error) {
	rules, err := s.repo.Rule.List(ctx)
	if err != nil {
		s.logger.Error("列出规则失败", zap.Error(err))
		return nil, err
	}
	items := make([]dto.RuleListItem, 0, len(rules))
	for i := range rules {
		rule := &rules[i]
		criteria := make([]string, 0, len(rule.Criteria))
		for _, c := range rule.Criteria {
			criteria = append(criteria, c.Name)
		}
		items = append(items, dto.RuleListItem{
			ID:          rule.RuleID,
			Name:        rule.Name,
			Criteria:    criteria,
			ActionCount: len(rule.Actions),
		})
	}
	return &dto.RuleListResponse{
		Rules:  items,
		Engine: s.engine.Status(ctx),
		Notice: s.engine.TakeNotice(ctx),
	}, nil
}

func (s *ruleService) GetByID(ctx context.Context, id string) (*dto.RuleResponse, error) {
	rule, err := s.repo.Rule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		s.logger.Error("查询规则失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRuleResponse(rule), nil
}

func (s *ruleService) Save(ctx context.Context, id string, req *dto.SaveRuleRequest) (*dto.SaveRuleResponse, error) {
	var stored *model.Rule
	if id != "" {
		var err error
		stored, err = s.repo.Rule.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRuleNotFound
			}
			s.logger.Error("查询规则失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	formErrors := &dto.SaveRuleErrors{}

	criteria := s.validateRuleForm(ctx, req, formErrors)
	plan, changed := s.buildPlan(ctx, req, stored, formErrors)

	if !formErrors.Empty() {
		return nil, &RuleValidationError{Errors: formErrors}
	}

	if stored != nil {
		plan.Rule.RuleID = stored.RuleID
		if req.Name != stored.Name {
			changed = true
		}
		if criteriaChanged(stored.Criteria, req.Criteria) {
			changed = true
		}
	} else {
		plan.RuleIsNew = true
		changed = true
	}
	plan.Criteria = criteria

	if err := s.repo.Rule.Save(ctx, plan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRuleSaveConflict
		}
		s.logger.Error("保存规则失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Rule.GetByID(ctx, plan.Rule.RuleID)
	if err != nil {
		s.logger.Error("回读规则失败", zap.String("id", plan.Rule.RuleID), zap.Error(err))
		return nil, err
	}

	response := &dto.SaveRuleResponse{
		Rule:    *toRuleResponse(saved),
		Changed: changed,
	}
	if changed {
		engineResp := s.engine.ReloadAndNotify(ctx)
		response.Engine = &engineResp
	}
	return response, nil
}

func (s *ruleService) Delete(ctx context.Context, id string) (*dto.EngineStatusResponse, error) {
	if _, err := s.repo.Rule.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if err := s.repo.Rule.Delete(ctx, id); err != nil {
		s.logger.Error("删除规则失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	engineResp := s.engine.ReloadAndNotify(ctx)
	return &engineResp, nil
}

// ── 校验与计划构建 ──

// validateRuleForm 校验规则本体字段并解析条件集合
func (s *ruleService) validateRuleForm(ctx context.Context, req *dto.SaveRuleRequest, formErrors *dto.SaveRuleErrors) []model.Criterion {
	if req.Name == "" {
		formErrors.RuleErrors().AddField("name", "此字段为必填项")
	} else if len([]rune(req.Name)) > 30 {
		formErrors.RuleErrors().AddField("name", "名称长度不能超过 30 个字符")
	}

	if len(req.Criteria) == 0 {
		formErrors.RuleErrors().AddField("criteria", "请至少选择一个条件")
		return nil
	}

	criteria, err := s.repo.Criterion.ListByNames(ctx, req.Criteria)
	if err != nil {
		s.logger.Error("查询条件失败", zap.Error(err))
		formErrors.RuleErrors().AddField("criteria", "条件查询失败")
		return nil
	}
	found := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		found[c.Name] = true
	}
	for _, name := range req.Criteria {
		if !found[name] {
			formErrors.RuleErrors().AddField("criteria", "条件不存在: "+name)
		}
	}
	return criteria
}

// buildPlan 逐个校验动作子表单并构建写入计划
// 返回值 changed 表示动作或参数层面是否有实际变更
func (s *ruleService) buildPlan(ctx context.Context, req *dto.SaveRuleRequest, stored *model.Rule, formErrors *dto.SaveRuleErrors) (*repository.RuleSavePlan, bool) {
	plan := &repository.RuleSavePlan{
		Rule: &model.Rule{Name: req.Name},
	}
	changed := false

	storedActions := make(map[string]*model.RuleAction)
	storedParameters := make(map[string]*model.RuleActionParameter)
	if stored != nil {
		for i := range stored.Actions {
			action := &stored.Actions[i]
			storedActions[action.RuleActionID] = action
			for j := range action.Parameters {
				storedParameters[action.Parameters[j].RuleActionParameterID] = &action.Parameters[j]
			}
		}
	}

	for index, form := range req.Actions {
		// 新增行带删除标记等于没提交
		if form.Delete && form.ID == "" {
			continue
		}

		if form.Delete {
			existing, ok := storedActions[form.ID]
			if !ok {
				formErrors.ActionErrors(index).AddField("id", "规则动作记录不存在")
				continue
			}
			// 删除与参数修改互斥，整次保存作废
			if s.deleteConflicts(form, existing) {
				formErrors.ActionErrors(index).AddNonField(ActDeleteParameterChange)
				continue
			}
			plan.DeleteActionIDs = append(plan.DeleteActionIDs, existing.RuleActionID)
			changed = true
			continue
		}

		actionNumber, ok := s.validateActionNumber(form.ActionNumber, index, formErrors)
		if !ok {
			continue
		}

		if form.Action == "" {
			formErrors.ActionErrors(index).AddField("action", "此字段为必填项")
			continue
		}
		action, err := s.repo.Action.GetByName(ctx, form.Action)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				formErrors.ActionErrors(index).AddField("action", "动作不存在")
			} else {
				s.logger.Error("查询动作失败", zap.String("name", form.Action), zap.Error(err))
				formErrors.ActionErrors(index).AddField("action", "动作查询失败")
			}
			continue
		}

		if form.ID == "" {
			ruleAction := &model.RuleAction{
				ActionNumber: actionNumber,
				ActionName:   action.Name,
			}
			ruleAction.Parameters = s.collectNewParameters(form.NewParameters, "", action, index, formErrors)
			plan.CreateActions = append(plan.CreateActions, ruleAction)
			changed = true
			continue
		}

		existing, ok := storedActions[form.ID]
		if !ok {
			formErrors.ActionErrors(index).AddField("id", "规则动作记录不存在")
			continue
		}
		if existing.ActionNumber != actionNumber || existing.ActionName != action.Name {
			plan.UpdateActions = append(plan.UpdateActions, &model.RuleAction{
				RuleActionID: existing.RuleActionID,
				ActionNumber: actionNumber,
				ActionName:   action.Name,
			})
			changed = true
		}

		for _, edit := range form.Parameters {
			record, ok := storedParameters[edit.ID]
			if !ok || record.RuleActionID != existing.RuleActionID {
				formErrors.ActionErrors(index).AddField("parameters", "参数记录不存在")
				continue
			}
			field := fieldspec.New(record.Parameter.Name, record.Parameter.DataType,
				record.Parameter.Required, record.Parameter.HelpText)
			if err := field.Validate(edit.Value); err != nil {
				formErrors.ActionErrors(index).AddField(record.ParameterName, err.Error())
				continue
			}
			if edit.Value != record.ParameterValue {
				plan.UpdateParameters = append(plan.UpdateParameters, &model.RuleActionParameter{
					RuleActionParameterID: record.RuleActionParameterID,
					ParameterValue:        edit.Value,
				})
				changed = true
			}
		}

		created := s.collectNewParameters(form.NewParameters, existing.RuleActionID, action, index, formErrors)
		for i := range created {
			plan.CreateParameters = append(plan.CreateParameters, &created[i])
			changed = true
		}
	}

	return plan, changed
}

// validateActionNumber 校验动作序号：缺失、非数字、非正数分别报错
func (s *ruleService) validateActionNumber(raw string, index int, formErrors *dto.SaveRuleErrors) (int, bool) {
	if raw == "" {
		formErrors.ActionErrors(index).AddField("action_number", "此字段为必填项")
		return 0, false
	}
	number, err := strconv.Atoi(raw)
	if err != nil {
		formErrors.ActionErrors(index).AddField("action_number", "请输入有效的整数")
		return 0, false
	}
	if number <= 0 {
		formErrors.ActionErrors(index).AddField("action_number", "动作序号必须大于 0")
		return 0, false
	}
	return number, true
}

// collectNewParameters 校验新参数条目并转换为待建记录
// 空值条目不建记录；必填参数的空值由合成字段报 ErrRequired
func (s *ruleService) collectNewParameters(entries []dto.NewParameterEntry, ruleActionID string, action *model.Action, index int, formErrors *dto.SaveRuleErrors) []model.RuleActionParameter {
	if len(entries) == 0 {
		return nil
	}

	signature := make(map[string]*model.Parameter, len(action.Parameters))
	for i := range action.Parameters {
		signature[action.Parameters[i].ParameterName] = &action.Parameters[i].Parameter
	}

	var created []model.RuleActionParameter
	for _, entry := range entries {
		parameter, ok := signature[entry.Parameter]
		if !ok {
			formErrors.ActionErrors(index).AddField("new_parameters", "参数不在动作签名内: "+entry.Parameter)
			continue
		}
		field := fieldspec.New(parameter.Name, parameter.DataType, parameter.Required, parameter.HelpText)
		if err := field.Validate(entry.Value); err != nil {
			formErrors.ActionErrors(index).AddField(parameter.Name, err.Error())
			continue
		}
		if entry.Value == "" {
			continue
		}
		created = append(created, model.RuleActionParameter{
			RuleActionID:   ruleActionID,
			ParameterName:  parameter.Name,
			ParameterValue: entry.Value,
		})
	}
	return created
}

// deleteConflicts 判断带删除标记的子表单是否同时携带参数修改
func (s *ruleService) deleteConflicts(form dto.RuleActionForm, existing *model.RuleAction) bool {
	stored := make(map[string]string, len(existing.Parameters))
	for _, p := range existing.Parameters {
		stored[p.RuleActionParameterID] = p.ParameterValue
	}
	for _, edit := range form.Parameters {
		value, ok := stored[edit.ID]
		if !ok || value != edit.Value {
			return true
		}
	}
	for _, entry := range form.NewParameters {
		if entry.Value != "" {
			return true
		}
	}
	return false
}

// criteriaChanged 比较存储的条件集合与提交的条件集合是否一致
func criteriaChanged(stored []model.Criterion, submitted []string) bool {
	if len(stored) != len(submitted) {
		return true
	}
	current := make([]string, 0, len(stored))
	for _, c := range stored {
		current = append(current, c.Name)
	}
	next := append([]string(nil), submitted...)
	sort.Strings(current)
	sort.Strings(next)
	for i := range current {
		if current[i] != next[i] {
			return true
		}
	}
	return false
}

// ── 响应转换 ──

func toRuleResponse(rule *model.Rule) *dto.RuleResponse {
	criteria := make([]string, 0, len(rule.Criteria))
	for _, c := range rule.Criteria {
		criteria = append(criteria, c.Name)
	}

	actions := make([]dto.RuleActionDetail, 0, len(rule.Actions))
	for i := range rule.Actions {
		action := &rule.Actions[i]

		stored := make(map[string]bool, len(action.Parameters))
		parameters := make([]dto.RuleActionParameterDetail, 0, len(action.Parameters))
		for _, p := range action.Parameters {
			stored[p.ParameterName] = true
			parameters = append(parameters, dto.RuleActionParameterDetail{
				ID:        p.RuleActionParameterID,
				Parameter: p.ParameterName,
				Value:     p.ParameterValue,
				Field: fieldspec.New(p.Parameter.Name, p.Parameter.DataType,
					p.Parameter.Required, p.Parameter.HelpText),
			})
		}

		// 签名里尚无存储记录的参数，合成空白字段供前端补填
		newFields := make([]fieldspec.Spec, 0)
		for _, ap := range action.Action.Parameters {
			if stored[ap.ParameterName] {
				continue
			}
			newFields = append(newFields, fieldspec.New(ap.Parameter.Name, ap.Parameter.DataType,
				ap.Parameter.Required, ap.Parameter.HelpText))
		}

		actions = append(actions, dto.RuleActionDetail{
			ID:                 action.RuleActionID,
			ActionNumber:       action.ActionNumber,
			Action:             action.ActionName,
			Parameters:         parameters,
			NewParameterFields: newFields,
		})
	}

	return &dto.RuleResponse{
		ID:        rule.RuleID,
		Name:      rule.Name,
		Criteria:  criteria,
		Actions:   actions,
		CreatedAt: rule.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rule.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
