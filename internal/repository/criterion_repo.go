package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/model"
)

// CriterionRepository 条件数据访问接口
type CriterionRepository interface {
	GetByName(ctx context.Context, name string) (*model.Criterion, error)
	List(ctx context.Context) ([]model.Criterion, error)
	ListByNames(ctx context.Context, names []string) ([]model.Criterion, error)
	Create(ctx context.Context, criterion *model.Criterion) error
	Update(ctx context.Context, criterion *model.Criterion) error
	Delete(ctx context.Context, name string) error
}

type criterionRepo struct {
	db *gorm.DB
}

// NewCriterionRepo 创建 CriterionRepository 实例
func NewCriterionRepo(db *gorm.DB) CriterionRepository {
	return &criterionRepo{db: db}
}

func (r *criterionRepo) GetByName(ctx context.Context, name string) (*model.Criterion, error) {
	var criterion model.Criterion
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&criterion).Error
	if err != nil {
		return nil, err
	}
	return &criterion, nil
}

func (r *criterionRepo) List(ctx context.Context) ([]model.Criterion, error) {
	var criteria []model.Criterion
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&criteria).Error
	return criteria, err
}

func (r *criterionRepo) ListByNames(ctx context.Context, names []string) ([]model.Criterion, error) {
	var criteria []model.Criterion
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Order("name ASC").
		Find(&criteria).Error
	return criteria, err
}

func (r *criterionRepo) Create(ctx context.Context, criterion *model.Criterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *criterionRepo) Update(ctx context.Context, criterion *model.Criterion) error {
	return r.db.WithContext(ctx).Save(criterion).Error
}

func (r *criterionRepo) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先清掉规则关联，保证在未启用外键级联的存储上也能删除
		if err := tx.Exec("DELETE FROM rule_criteria WHERE criterion_name = ?", name).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&model.Criterion{}).Error
	})
}
