package model

// Criterion 条件表 — 对应 criteria
// 逻辑表达式是不透明字符串，由外部引擎求值，本服务只做存取
type Criterion struct {
	Name  string `gorm:"type:varchar(30);primaryKey" json:"name"`
	Logic string `gorm:"type:text;not null"          json:"logic"`
	BaseModel
}

// TableName 指定表名
func (Criterion) TableName() string { return "criteria" }
