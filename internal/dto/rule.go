package dto

import "github.com/robert-f-ruff/rules-engine/internal/fieldspec"

// ── 规则模块 DTO ──
//
// 规则保存请求是显式的有序动作子记录列表：每个子记录自带既有记录标识、
// 删除标记、既有参数值编辑和新参数值条目，按提交顺序定位校验错误。

// SaveRuleRequest 保存规则请求（创建与编辑共用）
type SaveRuleRequest struct {
	Name     string           `json:"name"`
	Criteria []string         `json:"criteria"`
	Actions  []RuleActionForm `json:"actions"`
}

// RuleActionForm 单个规则动作子表单
// ActionNumber 以字符串承载，缺失与非数字由协调器区分报错
type RuleActionForm struct {
	ID            string               `json:"id"` // 既有 RuleAction 的 UUID，空表示新增
	ActionNumber  string               `json:"action_number"`
	Action        string               `json:"action"`
	Delete        bool                 `json:"delete"`
	Parameters    []ParameterEditForm  `json:"parameters"`     // 既有参数值记录的编辑
	NewParameters []NewParameterEntry  `json:"new_parameters"` // 尚无记录的参数的新值
}

// ParameterEditForm 既有参数值记录的编辑条目
type ParameterEditForm struct {
	ID    string `json:"id"` // RuleActionParameter 的 UUID
	Value string `json:"value"`
}

// NewParameterEntry 新参数值条目
// 空值表示不创建记录（可选参数）
type NewParameterEntry struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// ── 校验错误结构 ──

// FormErrors 单个子表单的错误集合
type FormErrors struct {
	Fields   map[string][]string `json:"fields,omitempty"`
	NonField []string            `json:"non_field,omitempty"`
}

// AddField 追加字段级错误
func (e *FormErrors) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// AddNonField 追加非字段错误
func (e *FormErrors) AddNonField(message string) {
	e.NonField = append(e.NonField, message)
}

// Empty 是否没有任何错误
func (e *FormErrors) Empty() bool {
	return len(e.Fields) == 0 && len(e.NonField) == 0
}

// SaveRuleErrors 整个保存请求的错误集合，按子表单分组
type SaveRuleErrors struct {
	Rule    *FormErrors         `json:"rule,omitempty"`
	Actions map[int]*FormErrors `json:"actions,omitempty"` // 键为动作子表单的提交下标
}

// RuleErrors 取规则子表单错误容器（按需创建）
func (e *SaveRuleErrors) RuleErrors() *FormErrors {
	if e.Rule == nil {
		e.Rule = &FormErrors{}
	}
	return e.Rule
}

// ActionErrors 取指定下标动作子表单的错误容器（按需创建）
func (e *SaveRuleErrors) ActionErrors(index int) *FormErrors {
	if e.Actions == nil {
		e.Actions = make(map[int]*FormErrors)
	}
	if e.Actions[index] == nil {
		e.Actions[index] = &FormErrors{}
	}
	return e.Actions[index]
}

// Empty 是否没有任何错误
func (e *SaveRuleErrors) Empty() bool {
	if e.Rule != nil && !e.Rule.Empty() {
		return false
	}
	for _, a := range e.Actions {
		if !a.Empty() {
			return false
		}
	}
	return true
}

// ── 响应 ──

// RuleListItem 规则列表条目
type RuleListItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Criteria    []string `json:"criteria"`
	ActionCount int      `json:"action_count"`
}

// RuleListResponse 规则列表响应
// Engine 为引擎当前状态；Notice 为上次保存触发重载的一次性提示
type RuleListResponse struct {
	Rules  []RuleListItem       `json:"rules"`
	Engine EngineStatusResponse `json:"engine"`
	Notice string               `json:"notice,omitempty"`
}

// RuleActionParameterDetail 既有参数值记录详情
type RuleActionParameterDetail struct {
	ID        string         `json:"id"`
	Parameter string         `json:"parameter"`
	Value     string         `json:"value"`
	Field     fieldspec.Spec `json:"field"`
}

// RuleActionDetail 规则动作详情
// NewParameterFields 是签名中尚无存储记录的参数的合成字段描述
type RuleActionDetail struct {
	ID                 string                      `json:"id"`
	ActionNumber       int                         `json:"action_number"`
	Action             string                      `json:"action"`
	Parameters         []RuleActionParameterDetail `json:"parameters"`
	NewParameterFields []fieldspec.Spec            `json:"new_parameter_fields"`
}

// RuleResponse 规则详情响应
type RuleResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Criteria  []string           `json:"criteria"`
	Actions   []RuleActionDetail `json:"actions"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

// SaveRuleResponse 保存规则响应
// Changed 表示本次提交是否改变了规则集；改变时 Engine 携带重载结果
type SaveRuleResponse struct {
	Rule    RuleResponse          `json:"rule"`
	Changed bool                  `json:"changed"`
	Engine  *EngineStatusResponse `json:"engine,omitempty"`
}
