package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/model"
)

// ParameterRepository 参数数据访问接口
type ParameterRepository interface {
	GetByName(ctx context.Context, name string) (*model.Parameter, error)
	List(ctx context.Context) ([]model.Parameter, error)
	Create(ctx context.Context, parameter *model.Parameter) error
	Update(ctx context.Context, parameter *model.Parameter) error
	Delete(ctx context.Context, name string) error
}

type parameterRepo struct {
	db *gorm.DB
}

// NewParameterRepo 创建 ParameterRepository 实例
func NewParameterRepo(db *gorm.DB) ParameterRepository {
	return &parameterRepo{db: db}
}

func (r *parameterRepo) GetByName(ctx context.Context, name string) (*model.Parameter, error) {
	var parameter model.Parameter
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&parameter).Error
	if err != nil {
		return nil, err
	}
	return &parameter, nil
}

func (r *parameterRepo) List(ctx context.Context) ([]model.Parameter, error) {
	var parameters []model.Parameter
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&parameters).Error
	return parameters, err
}

func (r *parameterRepo) Create(ctx context.Context, parameter *model.Parameter) error {
	return r.db.WithContext(ctx).Create(parameter).Error
}

func (r *parameterRepo) Update(ctx context.Context, parameter *model.Parameter) error {
	return r.db.WithContext(ctx).Save(parameter).Error
}

func (r *parameterRepo) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parameter_name = ?", name).
			Delete(&model.RuleActionParameter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parameter_name = ?", name).
			Delete(&model.ActionParameter{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&model.Parameter{}).Error
	})
}
