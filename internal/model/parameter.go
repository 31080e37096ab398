package model

// Parameter 参数表 — 对应 parameters
// data_type 驱动动态表单字段合成，取值见 fieldspec 包的类型枚举
type Parameter struct {
	Name     string `gorm:"type:varchar(30);primaryKey"  json:"name"`
	DataType string `gorm:"type:varchar(20);not null"    json:"data_type"`
	Required bool   `gorm:"not null;default:false"       json:"required"`
	HelpText string `gorm:"type:text;not null;default:''" json:"help_text"`
	BaseModel
}

// TableName 指定表名
func (Parameter) TableName() string { return "parameters" }
