package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/model"
)

// RuleSavePlan 一次规则保存事务的完整写入计划
// 协调器在全部校验通过后构建计划，Save 在单个事务内按
// 删除 → 更新 → 新增的顺序应用，任何一步失败则整体回滚
type RuleSavePlan struct {
	Rule      *model.Rule       // 待保存的规则本体
	RuleIsNew bool              // true 表示创建，false 表示更新
	Criteria  []model.Criterion // 规则的条件集合（整体替换）

	DeleteActionIDs []string            // 删除标记命中的既有规则动作
	UpdateActions   []*model.RuleAction // 序号或动作变化的既有规则动作
	CreateActions   []*model.RuleAction // 新增规则动作，Parameters 携带待建参数值

	UpdateParameters []*model.RuleActionParameter // 既有参数值记录的修改
	CreateParameters []*model.RuleActionParameter // 既有规则动作下新建的参数值记录
}

// RuleRepository 规则数据访问接口
type RuleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Rule, error)
	List(ctx context.Context) ([]model.Rule, error)
	Save(ctx context.Context, plan *RuleSavePlan) error
	Delete(ctx context.Context, id string) error
}

type ruleRepo struct {
	db *gorm.DB
}

// NewRuleRepo 创建 RuleRepository 实例
func NewRuleRepo(db *gorm.DB) RuleRepository {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) GetByID(ctx context.Context, id string) (*model.Rule, error) {
	var rule model.Rule
	err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("action_number ASC")
		}).
		Preload("Actions.Action.Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("parameter_number ASC")
		}).
		Preload("Actions.Action.Parameters.Parameter").
		Preload("Actions.Parameters.Parameter").
		Where("rule_id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepo) List(ctx context.Context) ([]model.Rule, error) {
	var rules []model.Rule
	err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("Actions").
		Order("name ASC").
		Find(&rules).Error
	return rules, err
}

// Save 在单个事务内应用整份写入计划
// 动作序号的唯一约束在这里兜底：重复序号触发 gorm.ErrDuplicatedKey 并回滚全部写入
func (r *ruleRepo) Save(ctx context.Context, plan *RuleSavePlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 规则本体
		if plan.RuleIsNew {
			if err := tx.Omit("Criteria", "Actions").Create(plan.Rule).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&model.Rule{RuleID: plan.Rule.RuleID}).
				Update("name", plan.Rule.Name).Error; err != nil {
				return err
			}
		}

		// 2. 条件集合整体替换
		if err := tx.Model(plan.Rule).Association("Criteria").Replace(plan.Criteria); err != nil {
			return err
		}

		// 3. 删除标记命中的规则动作（连同其参数值）
		if len(plan.DeleteActionIDs) > 0 {
			if err := tx.Where("rule_action_id IN ?", plan.DeleteActionIDs).
				Delete(&model.RuleActionParameter{}).Error; err != nil {
				return err
			}
			if err := tx.Where("rule_action_id IN ?", plan.DeleteActionIDs).
				Delete(&model.RuleAction{}).Error; err != nil {
				return err
			}
		}

		// 4. 既有规则动作的修改
		for _, action := range plan.UpdateActions {
			err := tx.Model(&model.RuleAction{RuleActionID: action.RuleActionID}).
				Updates(map[string]interface{}{
					"action_number": action.ActionNumber,
					"action_name":   action.ActionName,
				}).Error
			if err != nil {
				return err
			}
		}

		// 5. 新增规则动作及其参数值
		for _, action := range plan.CreateActions {
			parameters := action.Parameters
			action.Parameters = nil
			action.RuleID = plan.Rule.RuleID
			if err := tx.Omit("Parameters", "Action").Create(action).Error; err != nil {
				return err
			}
			for i := range parameters {
				parameters[i].RuleActionID = action.RuleActionID
				if err := tx.Omit("Parameter").Create(&parameters[i]).Error; err != nil {
					return err
				}
			}
			action.Parameters = parameters
		}

		// 6. 既有参数值记录的修改
		for _, parameter := range plan.UpdateParameters {
			err := tx.Model(&model.RuleActionParameter{RuleActionParameterID: parameter.RuleActionParameterID}).
				Update("parameter_value", parameter.ParameterValue).Error
			if err != nil {
				return err
			}
		}

		// 7. 既有规则动作下新建的参数值记录
		for _, parameter := range plan.CreateParameters {
			if err := tx.Omit("Parameter").Create(parameter).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ruleActionIDs []string
		if err := tx.Model(&model.RuleAction{}).
			Where("rule_id = ?", id).
			Pluck("rule_action_id", &ruleActionIDs).Error; err != nil {
			return err
		}
		if len(ruleActionIDs) > 0 {
			if err := tx.Where("rule_action_id IN ?", ruleActionIDs).
				Delete(&model.RuleActionParameter{}).Error; err != nil {
				return err
			}
			if err := tx.Where("rule_action_id IN ?", ruleActionIDs).
				Delete(&model.RuleAction{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM rule_criteria WHERE rule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("rule_id = ?", id).Delete(&model.Rule{}).Error
	})
}
