package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/model"
	"github.com/robert-f-ruff/rules-engine/internal/repository"
	"github.com/robert-f-ruff/rules-engine/pkg/engine"
)

// ── Mock CriterionRepository ──

type mockCriterionRepo struct {
	criteria map[string]*model.Criterion
}

func newMockCriterionRepo() *mockCriterionRepo {
	return &mockCriterionRepo{criteria: make(map[string]*model.Criterion)}
}

func (m *mockCriterionRepo) GetByName(_ context.Context, name string) (*model.Criterion, error) {
	if c, ok := m.criteria[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCriterionRepo) List(_ context.Context) ([]model.Criterion, error) {
	var result []model.Criterion
	for _, c := range m.criteria {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCriterionRepo) ListByNames(_ context.Context, names []string) ([]model.Criterion, error) {
	var result []model.Criterion
	for _, name := range names {
		if c, ok := m.criteria[name]; ok {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCriterionRepo) Create(_ context.Context, criterion *model.Criterion) error {
	if _, ok := m.criteria[criterion.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.criteria[criterion.Name] = criterion
	return nil
}

func (m *mockCriterionRepo) Update(_ context.Context, criterion *model.Criterion) error {
	m.criteria[criterion.Name] = criterion
	return nil
}

func (m *mockCriterionRepo) Delete(_ context.Context, name string) error {
	delete(m.criteria, name)
	return nil
}

// ── Mock ParameterRepository ──

type mockParameterRepo struct {
	parameters map[string]*model.Parameter
}

func newMockParameterRepo() *mockParameterRepo {
	return &mockParameterRepo{parameters: make(map[string]*model.Parameter)}
}

func (m *mockParameterRepo) GetByName(_ context.Context, name string) (*model.Parameter, error) {
	if p, ok := m.parameters[name]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParameterRepo) List(_ context.Context) ([]model.Parameter, error) {
	var result []model.Parameter
	for _, p := range m.parameters {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockParameterRepo) Create(_ context.Context, parameter *model.Parameter) error {
	if _, ok := m.parameters[parameter.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.parameters[parameter.Name] = parameter
	return nil
}

func (m *mockParameterRepo) Update(_ context.Context, parameter *model.Parameter) error {
	m.parameters[parameter.Name] = parameter
	return nil
}

func (m *mockParameterRepo) Delete(_ context.Context, name string) error {
	delete(m.parameters, name)
	return nil
}

// ── Mock ActionRepository ──

type mockActionRepo struct {
	actions    map[string]*model.Action
	parameters *mockParameterRepo
}

func newMockActionRepo(parameters *mockParameterRepo) *mockActionRepo {
	return &mockActionRepo{actions: make(map[string]*model.Action), parameters: parameters}
}

// fillSignature 模拟参数元数据的预加载
func (m *mockActionRepo) fillSignature(action *model.Action) *model.Action {
	filled := *action
	filled.Parameters = append([]model.ActionParameter(nil), action.Parameters...)
	sort.Slice(filled.Parameters, func(i, j int) bool {
		return filled.Parameters[i].ParameterNumber < filled.Parameters[j].ParameterNumber
	})
	for i := range filled.Parameters {
		if p, ok := m.parameters.parameters[filled.Parameters[i].ParameterName]; ok {
			filled.Parameters[i].Parameter = *p
		}
	}
	return &filled
}

func (m *mockActionRepo) GetByName(_ context.Context, name string) (*model.Action, error) {
	if a, ok := m.actions[name]; ok {
		return m.fillSignature(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActionRepo) List(_ context.Context) ([]model.Action, error) {
	var result []model.Action
	for _, a := range m.actions {
		result = append(result, *m.fillSignature(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockActionRepo) Create(_ context.Context, action *model.Action) error {
	if _, ok := m.actions[action.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.actions[action.Name] = action
	return nil
}

func (m *mockActionRepo) Update(_ context.Context, action *model.Action, _ bool) error {
	m.actions[action.Name] = action
	return nil
}

func (m *mockActionRepo) Delete(_ context.Context, name string) error {
	delete(m.actions, name)
	return nil
}

// ── Mock RuleRepository ──

// mockRuleRepo 在内存中模拟整份写入计划的事务语义：
// 全部写入先应用到副本，动作序号重复返回 gorm.ErrDuplicatedKey 且不提交
type mockRuleRepo struct {
	rules   map[string]*model.Rule
	actions *mockActionRepo
	nextID  int
	saveErr error // 非空时 Save 直接失败
}

func newMockRuleRepo(actions *mockActionRepo) *mockRuleRepo {
	return &mockRuleRepo{rules: make(map[string]*model.Rule), actions: actions}
}

func cloneRule(rule *model.Rule) *model.Rule {
	cloned := *rule
	cloned.Criteria = append([]model.Criterion(nil), rule.Criteria...)
	cloned.Actions = make([]model.RuleAction, len(rule.Actions))
	for i, action := range rule.Actions {
		cloned.Actions[i] = action
		cloned.Actions[i].Parameters = append([]model.RuleActionParameter(nil), action.Parameters...)
	}
	return &cloned
}

func (m *mockRuleRepo) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockRuleRepo) GetByID(_ context.Context, id string) (*model.Rule, error) {
	rule, ok := m.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// 模拟预加载：填充动作签名与参数元数据，并按序号排序
	loaded := cloneRule(rule)
	sort.Slice(loaded.Actions, func(i, j int) bool {
		return loaded.Actions[i].ActionNumber < loaded.Actions[j].ActionNumber
	})
	for i := range loaded.Actions {
		action := &loaded.Actions[i]
		if a, ok := m.actions.actions[action.ActionName]; ok {
			action.Action = *m.actions.fillSignature(a)
		}
		for j := range action.Parameters {
			if p, ok := m.actions.parameters.parameters[action.Parameters[j].ParameterName]; ok {
				action.Parameters[j].Parameter = *p
			}
		}
	}
	sort.Slice(loaded.Criteria, func(i, j int) bool {
		return loaded.Criteria[i].Name < loaded.Criteria[j].Name
	})
	return loaded, nil
}

func (m *mockRuleRepo) List(_ context.Context) ([]model.Rule, error) {
	var result []model.Rule
	for _, rule := range m.rules {
		result = append(result, *cloneRule(rule))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRuleRepo) Save(_ context.Context, plan *repository.RuleSavePlan) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	var working *model.Rule
	if plan.RuleIsNew {
		if plan.Rule.RuleID == "" {
			plan.Rule.RuleID = m.newID("rule")
		}
		working = &model.Rule{RuleID: plan.Rule.RuleID, Name: plan.Rule.Name}
	} else {
		stored, ok := m.rules[plan.Rule.RuleID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		working = cloneRule(stored)
		working.Name = plan.Rule.Name
	}
	working.Criteria = append([]model.Criterion(nil), plan.Criteria...)

	deleted := make(map[string]bool, len(plan.DeleteActionIDs))
	for _, id := range plan.DeleteActionIDs {
		deleted[id] = true
	}
	kept := working.Actions[:0]
	for _, action := range working.Actions {
		if !deleted[action.RuleActionID] {
			kept = append(kept, action)
		}
	}
	working.Actions = kept

	for _, update := range plan.UpdateActions {
		for i := range working.Actions {
			if working.Actions[i].RuleActionID == update.RuleActionID {
				working.Actions[i].ActionNumber = update.ActionNumber
				working.Actions[i].ActionName = update.ActionName
			}
		}
	}

	for _, create := range plan.CreateActions {
		action := *create
		if action.RuleActionID == "" {
			action.RuleActionID = m.newID("ra")
		}
		create.RuleActionID = action.RuleActionID
		action.RuleID = working.RuleID
		action.Parameters = append([]model.RuleActionParameter(nil), create.Parameters...)
		for i := range action.Parameters {
			action.Parameters[i].RuleActionID = action.RuleActionID
			if action.Parameters[i].RuleActionParameterID == "" {
				action.Parameters[i].RuleActionParameterID = m.newID("rap")
			}
		}
		working.Actions = append(working.Actions, action)
	}

	for _, update := range plan.UpdateParameters {
		for i := range working.Actions {
			for j := range working.Actions[i].Parameters {
				if working.Actions[i].Parameters[j].RuleActionParameterID == update.RuleActionParameterID {
					working.Actions[i].Parameters[j].ParameterValue = update.ParameterValue
				}
			}
		}
	}

	for _, create := range plan.CreateParameters {
		parameter := *create
		if parameter.RuleActionParameterID == "" {
			parameter.RuleActionParameterID = m.newID("rap")
		}
		for i := range working.Actions {
			if working.Actions[i].RuleActionID == parameter.RuleActionID {
				working.Actions[i].Parameters = append(working.Actions[i].Parameters, parameter)
			}
		}
	}

	// 唯一约束兜底：序号重复则整体回滚
	numbers := make(map[int]bool, len(working.Actions))
	for _, action := range working.Actions {
		if numbers[action.ActionNumber] {
			return gorm.ErrDuplicatedKey
		}
		numbers[action.ActionNumber] = true
	}

	m.rules[working.RuleID] = working
	return nil
}

func (m *mockRuleRepo) Delete(_ context.Context, id string) error {
	delete(m.rules, id)
	return nil
}

// ── Mock 引擎客户端与提示暂存 ──

type mockEngineCaller struct {
	statusResult engine.Result
	reloadResult engine.Result
	statusCalls  int
	reloadCalls  int
}

func (m *mockEngineCaller) Status(_ context.Context) engine.Result {
	m.statusCalls++
	return m.statusResult
}

func (m *mockEngineCaller) Reload(_ context.Context) engine.Result {
	m.reloadCalls++
	return m.reloadResult
}

type mockNoticeStore struct {
	notice string
	setErr error
	getErr error
}

func (m *mockNoticeStore) SetEngineNotice(_ context.Context, text string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.notice = text
	return nil
}

func (m *mockNoticeStore) TakeEngineNotice(_ context.Context) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	text := m.notice
	m.notice = ""
	return text, nil
}
