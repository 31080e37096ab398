package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Criterion CriterionRepository
	Parameter ParameterRepository
	Action    ActionRepository
	Rule      RuleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Criterion: NewCriterionRepo(db),
		Parameter: NewParameterRepo(db),
		Action:    NewActionRepo(db),
		Rule:      NewRuleRepo(db),
	}
}
