package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/model"
)

// ActionRepository 动作数据访问接口
// 动作与其参数签名一并原子保存
type ActionRepository interface {
	GetByName(ctx context.Context, name string) (*model.Action, error)
	List(ctx context.Context) ([]model.Action, error)
	Create(ctx context.Context, action *model.Action) error
	Update(ctx context.Context, action *model.Action, replaceSignature bool) error
	Delete(ctx context.Context, name string) error
}

type actionRepo struct {
	db *gorm.DB
}

// NewActionRepo 创建 ActionRepository 实例
func NewActionRepo(db *gorm.DB) ActionRepository {
	return &actionRepo{db: db}
}

func (r *actionRepo) GetByName(ctx context.Context, name string) (*model.Action, error) {
	var action model.Action
	err := r.db.WithContext(ctx).
		Preload("Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("parameter_number ASC")
		}).
		Preload("Parameters.Parameter").
		Where("name = ?", name).
		First(&action).Error
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *actionRepo) List(ctx context.Context) ([]model.Action, error) {
	var actions []model.Action
	err := r.db.WithContext(ctx).
		Preload("Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("parameter_number ASC")
		}).
		Preload("Parameters.Parameter").
		Order("name ASC").
		Find(&actions).Error
	return actions, err
}

func (r *actionRepo) Create(ctx context.Context, action *model.Action) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		signature := action.Parameters
		action.Parameters = nil
		if err := tx.Omit("Parameters").Create(action).Error; err != nil {
			return err
		}
		for i := range signature {
			signature[i].ActionName = action.Name
			if err := tx.Create(&signature[i]).Error; err != nil {
				return err
			}
		}
		action.Parameters = signature
		return nil
	})
}

func (r *actionRepo) Update(ctx context.Context, action *model.Action, replaceSignature bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Action{Name: action.Name}).
			Update("function", action.Function).Error; err != nil {
			return err
		}
		if !replaceSignature {
			return nil
		}
		if err := tx.Where("action_name = ?", action.Name).
			Delete(&model.ActionParameter{}).Error; err != nil {
			return err
		}
		for i := range action.Parameters {
			action.Parameters[i].ActionParameterID = ""
			action.Parameters[i].ActionName = action.Name
			if err := tx.Create(&action.Parameters[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *actionRepo) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 级联清理引用该动作的规则动作及其参数值
		var ruleActionIDs []string
		if err := tx.Model(&model.RuleAction{}).
			Where("action_name = ?", name).
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
		if err := tx.Where("action_name = ?", name).
			Delete(&model.ActionParameter{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&model.Action{}).Error
	})
}
