package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/model"
	"github.com/robert-f-ruff/rules-engine/internal/repository"
)

// ── 条件模块业务错误 ──

var (
	ErrCriterionNotFound = errors.New("条件不存在")
	ErrCriterionExists   = errors.New("同名条件已存在")
)

// CriterionService 条件业务接口
// 逻辑表达式是不透明字符串，由外部引擎求值，这里不做语法检查
type CriterionService interface {
	GetByName(ctx context.Context, name string) (*dto.CriterionResponse, error)
	List(ctx context.Context) ([]dto.CriterionResponse, error)
	Create(ctx context.Context, req *dto.CreateCriterionRequest) (*dto.CriterionResponse, error)
	Update(ctx context.Context, name string, req *dto.UpdateCriterionRequest) (*dto.CriterionResponse, error)
	Delete(ctx context.Context, name string) error
}

type criterionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCriterionService 创建 CriterionService 实例
func NewCriterionService(repo *repository.Repository, logger *zap.Logger) CriterionService {
	return &criterionService{repo: repo, logger: logger}
}

func (s *criterionService) GetByName(ctx context.Context, name string) (*dto.CriterionResponse, error) {
	criterion, err := s.repo.Criterion.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		s.logger.Error("查询条件失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toCriterionResponse(criterion), nil
}

func (s *criterionService) List(ctx context.Context) ([]dto.CriterionResponse, error) {
	criteria, err := s.repo.Criterion.List(ctx)
	if err != nil {
		s.logger.Error("列出条件失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CriterionResponse, 0, len(criteria))
	for i := range criteria {
		result = append(result, *toCriterionResponse(&criteria[i]))
	}
	return result, nil
}

func (s *criterionService) Create(ctx context.Context, req *dto.CreateCriterionRequest) (*dto.CriterionResponse, error) {
	criterion := &model.Criterion{Name: req.Name, Logic: req.Logic}
	if err := s.repo.Criterion.Create(ctx, criterion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCriterionExists
		}
		s.logger.Error("创建条件失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	return toCriterionResponse(criterion), nil
}

func (s *criterionService) Update(ctx context.Context, name string, req *dto.UpdateCriterionRequest) (*dto.CriterionResponse, error) {
	criterion, err := s.repo.Criterion.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		s.logger.Error("查询条件失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	if req.Logic != nil {
		criterion.Logic = *req.Logic
	}

	if err := s.repo.Criterion.Update(ctx, criterion); err != nil {
		s.logger.Error("更新条件失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toCriterionResponse(criterion), nil
}

func (s *criterionService) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.Criterion.GetByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCriterionNotFound
		}
		return err
	}
	if err := s.repo.Criterion.Delete(ctx, name); err != nil {
		s.logger.Error("删除条件失败", zap.String("name", name), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toCriterionResponse(criterion *model.Criterion) *dto.CriterionResponse {
	return &dto.CriterionResponse{
		Name:      criterion.Name,
		Logic:     criterion.Logic,
		CreatedAt: criterion.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: criterion.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
