package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action 动作表 — 对应 actions
// function 是引擎侧执行的函数标识；参数签名经 action_parameters 关联并排序
type Action struct {
	Name       string            `gorm:"type:varchar(30);primaryKey" json:"name"`
	Function   string            `gorm:"type:varchar(30);not null"   json:"function"`
	Parameters []ActionParameter `gorm:"foreignKey:ActionName;references:Name" json:"parameters,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Action) TableName() string { return "actions" }

// ActionParameter 动作参数签名表 — 对应 action_parameters
// 同一动作内参数序号唯一
type ActionParameter struct {
	ActionParameterID string    `gorm:"type:uuid;primaryKey"                                      json:"action_parameter_id"`
	ActionName        string    `gorm:"type:varchar(30);not null;uniqueIndex:unique_parameter_number" json:"action_name"`
	ParameterNumber   int       `gorm:"not null;uniqueIndex:unique_parameter_number"              json:"parameter_number"`
	ParameterName     string    `gorm:"type:varchar(30);not null"                                 json:"parameter_name"`
	Parameter         Parameter `gorm:"foreignKey:ParameterName;references:Name"                  json:"parameter"`
}

// TableName 指定表名
func (ActionParameter) TableName() string { return "action_parameters" }

// BeforeCreate 生成主键
func (p *ActionParameter) BeforeCreate(_ *gorm.DB) error {
	if p.ActionParameterID == "" {
		p.ActionParameterID = uuid.NewString()
	}
	return nil
}
