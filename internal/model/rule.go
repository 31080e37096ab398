package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule 规则表 — 对应 rules
// 条件集合决定规则是否适用，动作列表决定引擎执行什么
type Rule struct {
	RuleID   string       `gorm:"type:uuid;primaryKey"       json:"rule_id"`
	Name     string       `gorm:"type:varchar(30);not null"  json:"name"`
	Criteria []Criterion  `gorm:"many2many:rule_criteria;foreignKey:RuleID;joinForeignKey:RuleID;references:Name;joinReferences:CriterionName" json:"criteria,omitempty"`
	Actions  []RuleAction `gorm:"foreignKey:RuleID"          json:"actions,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Rule) TableName() string { return "rules" }

// BeforeCreate 生成主键
func (r *Rule) BeforeCreate(_ *gorm.DB) error {
	if r.RuleID == "" {
		r.RuleID = uuid.NewString()
	}
	return nil
}

// RuleAction 规则动作表 — 对应 rule_actions
// 同一规则内动作序号唯一，动作按序号从小到大执行
type RuleAction struct {
	RuleActionID string                `gorm:"type:uuid;primaryKey"                                    json:"rule_action_id"`
	RuleID       string                `gorm:"type:uuid;not null;uniqueIndex:unique_action_number"     json:"rule_id"`
	ActionNumber int                   `gorm:"not null;uniqueIndex:unique_action_number"               json:"action_number"`
	ActionName   string                `gorm:"type:varchar(30);not null"                               json:"action_name"`
	Action       Action                `gorm:"foreignKey:ActionName;references:Name"                   json:"action"`
	Parameters   []RuleActionParameter `gorm:"foreignKey:RuleActionID"                                 json:"parameters,omitempty"`
	BaseModel
}

// TableName 指定表名
func (RuleAction) TableName() string { return "rule_actions" }

// BeforeCreate 生成主键
func (a *RuleAction) BeforeCreate(_ *gorm.DB) error {
	if a.RuleActionID == "" {
		a.RuleActionID = uuid.NewString()
	}
	return nil
}

// RuleActionParameter 规则动作参数值表 — 对应 rule_action_parameters
// 空值不落库：可选参数可以没有对应记录
type RuleActionParameter struct {
	RuleActionParameterID string    `gorm:"type:uuid;primaryKey"       json:"rule_action_parameter_id"`
	RuleActionID          string    `gorm:"type:uuid;not null"         json:"rule_action_id"`
	ParameterName         string    `gorm:"type:varchar(30);not null"  json:"parameter_name"`
	Parameter             Parameter `gorm:"foreignKey:ParameterName;references:Name" json:"parameter"`
	ParameterValue        string    `gorm:"type:text;not null"         json:"parameter_value"`
	BaseModel
}

// TableName 指定表名
func (RuleActionParameter) TableName() string { return "rule_action_parameters" }

// BeforeCreate 生成主键
func (p *RuleActionParameter) BeforeCreate(_ *gorm.DB) error {
	if p.RuleActionParameterID == "" {
		p.RuleActionParameterID = uuid.NewString()
	}
	return nil
}
