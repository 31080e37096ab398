package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/fieldspec"
	"github.com/robert-f-ruff/rules-engine/internal/model"
	"github.com/robert-f-ruff/rules-engine/internal/repository"
)

// ── 参数模块业务错误 ──

var (
	ErrParameterNotFound = errors.New("参数不存在")
	ErrParameterExists   = errors.New("同名参数已存在")
	ErrParameterBadType  = errors.New("不支持的参数数据类型")
)

// ParameterService 参数业务接口
type ParameterService interface {
	GetByName(ctx context.Context, name string) (*dto.ParameterResponse, error)
	List(ctx context.Context) ([]dto.ParameterResponse, error)
	Create(ctx context.Context, req *dto.CreateParameterRequest) (*dto.ParameterResponse, error)
	Update(ctx context.Context, name string, req *dto.UpdateParameterRequest) (*dto.ParameterResponse, error)
	Delete(ctx context.Context, name string) error
}

type parameterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewParameterService 创建 ParameterService 实例
func NewParameterService(repo *repository.Repository, logger *zap.Logger) ParameterService {
	return &parameterService{repo: repo, logger: logger}
}

func (s *parameterService) GetByName(ctx context.Context, name string) (*dto.ParameterResponse, error) {
	parameter, err := s.repo.Parameter.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParameterNotFound
		}
		s.logger.Error("查询参数失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toParameterResponse(parameter), nil
}

func (s *parameterService) List(ctx context.Context) ([]dto.ParameterResponse, error) {
	parameters, err := s.repo.Parameter.List(ctx)
	if err != nil {
		s.logger.Error("列出参数失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ParameterResponse, 0, len(parameters))
	for i := range parameters {
		result = append(result, *toParameterResponse(&parameters[i]))
	}
	return result, nil
}

func (s *parameterService) Create(ctx context.Context, req *dto.CreateParameterRequest) (*dto.ParameterResponse, error) {
	// 绑定层的枚举校验之外，业务层以字段合成器支持的类型为准
	if !fieldspec.KnownType(req.DataType) {
		return nil, ErrParameterBadType
	}
	parameter := &model.Parameter{
		Name:     req.Name,
		DataType: req.DataType,
		Required: req.Required,
		HelpText: req.HelpText,
	}
	if err := s.repo.Parameter.Create(ctx, parameter); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrParameterExists
		}
		s.logger.Error("创建参数失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	return toParameterResponse(parameter), nil
}

func (s *parameterService) Update(ctx context.Context, name string, req *dto.UpdateParameterRequest) (*dto.ParameterResponse, error) {
	parameter, err := s.repo.Parameter.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParameterNotFound
		}
		s.logger.Error("查询参数失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	if req.DataType != nil {
		if !fieldspec.KnownType(*req.DataType) {
			return nil, ErrParameterBadType
		}
		parameter.DataType = *req.DataType
	}
	if req.Required != nil {
		parameter.Required = *req.Required
	}
	if req.HelpText != nil {
		parameter.HelpText = *req.HelpText
	}

	if err := s.repo.Parameter.Update(ctx, parameter); err != nil {
		s.logger.Error("更新参数失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toParameterResponse(parameter), nil
}

func (s *parameterService) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.Parameter.GetByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParameterNotFound
		}
		return err
	}
	if err := s.repo.Parameter.Delete(ctx, name); err != nil {
		s.logger.Error("删除参数失败", zap.String("name", name), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toParameterResponse(parameter *model.Parameter) *dto.ParameterResponse {
	return &dto.ParameterResponse{
		Name:      parameter.Name,
		DataType:  parameter.DataType,
		Required:  parameter.Required,
		HelpText:  parameter.HelpText,
		Field:     fieldspec.New(parameter.Name, parameter.DataType, parameter.Required, parameter.HelpText),
		CreatedAt: parameter.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: parameter.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
