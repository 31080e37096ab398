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

// ── 动作模块业务错误 ──

var (
	ErrActionNotFound         = errors.New("动作不存在")
	ErrActionExists           = errors.New("同名动作已存在")
	ErrActionUnknownParameter = errors.New("签名引用了不存在的参数")
	ErrActionDuplicateNumber  = errors.New("签名内参数序号重复")
)

// ActionService 动作业务接口
// 参数签名与动作本体一并原子保存
type ActionService interface {
	GetByName(ctx context.Context, name string) (*dto.ActionResponse, error)
	List(ctx context.Context) ([]dto.ActionResponse, error)
	// ParameterFields 合成动作签名中全部参数的表单字段描述
	ParameterFields(ctx context.Context, name string) ([]fieldspec.Spec, error)
	Create(ctx context.Context, req *dto.CreateActionRequest) (*dto.ActionResponse, error)
	Update(ctx context.Context, name string, req *dto.UpdateActionRequest) (*dto.ActionResponse, error)
	Delete(ctx context.Context, name string) error
}

type actionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActionService 创建 ActionService 实例
func NewActionService(repo *repository.Repository, logger *zap.Logger) ActionService {
	return &actionService{repo: repo, logger: logger}
}

func (s *actionService) GetByName(ctx context.Context, name string) (*dto.ActionResponse, error) {
	action, err := s.repo.Action.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		s.logger.Error("查询动作失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toActionResponse(action), nil
}

func (s *actionService) List(ctx context.Context) ([]dto.ActionResponse, error) {
	actions, err := s.repo.Action.List(ctx)
	if err != nil {
		s.logger.Error("列出动作失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ActionResponse, 0, len(actions))
	for i := range actions {
		result = append(result, *toActionResponse(&actions[i]))
	}
	return result, nil
}

func (s *actionService) ParameterFields(ctx context.Context, name string) ([]fieldspec.Spec, error) {
	action, err := s.repo.Action.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		s.logger.Error("查询动作失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	fields := make([]fieldspec.Spec, 0, len(action.Parameters))
	for _, ap := range action.Parameters {
		fields = append(fields, fieldspec.New(ap.Parameter.Name, ap.Parameter.DataType,
			ap.Parameter.Required, ap.Parameter.HelpText))
	}
	return fields, nil
}

func (s *actionService) Create(ctx context.Context, req *dto.CreateActionRequest) (*dto.ActionResponse, error) {
	signature, err := s.buildSignature(ctx, req.Parameters)
	if err != nil {
		return nil, err
	}

	action := &model.Action{
		Name:       req.Name,
		Function:   req.Function,
		Parameters: signature,
	}
	if err := s.repo.Action.Create(ctx, action); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrActionExists
		}
		s.logger.Error("创建动作失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	return s.GetByName(ctx, action.Name)
}

func (s *actionService) Update(ctx context.Context, name string, req *dto.UpdateActionRequest) (*dto.ActionResponse, error) {
	action, err := s.repo.Action.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		s.logger.Error("查询动作失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	if req.Function != nil {
		action.Function = *req.Function
	}
	replaceSignature := req.Parameters != nil
	if replaceSignature {
		signature, err := s.buildSignature(ctx, *req.Parameters)
		if err != nil {
			return nil, err
		}
		action.Parameters = signature
	}

	if err := s.repo.Action.Update(ctx, action, replaceSignature); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrActionDuplicateNumber
		}
		s.logger.Error("更新动作失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return s.GetByName(ctx, name)
}

func (s *actionService) Delete(ctx context.Context, name string) error {
	if _, err := s.repo.Action.GetByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActionNotFound
		}
		return err
	}
	if err := s.repo.Action.Delete(ctx, name); err != nil {
		s.logger.Error("删除动作失败", zap.String("name", name), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// buildSignature 校验签名条目并转换为模型
// 序号重复在这里提前拦截，存储层唯一约束仍然兜底
func (s *actionService) buildSignature(ctx context.Context, inputs []dto.ActionParameterInput) ([]model.ActionParameter, error) {
	seen := make(map[int]bool, len(inputs))
	signature := make([]model.ActionParameter, 0, len(inputs))
	for _, input := range inputs {
		if seen[input.ParameterNumber] {
			return nil, ErrActionDuplicateNumber
		}
		seen[input.ParameterNumber] = true

		if _, err := s.repo.Parameter.GetByName(ctx, input.Parameter); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrActionUnknownParameter
			}
			return nil, err
		}
		signature = append(signature, model.ActionParameter{
			ParameterNumber: input.ParameterNumber,
			ParameterName:   input.Parameter,
		})
	}
	return signature, nil
}

func toActionResponse(action *model.Action) *dto.ActionResponse {
	parameters := make([]dto.ActionParameterResponse, 0, len(action.Parameters))
	for _, ap := range action.Parameters {
		parameters = append(parameters, dto.ActionParameterResponse{
			ParameterNumber: ap.ParameterNumber,
			Parameter:       ap.ParameterName,
			Field: fieldspec.New(ap.Parameter.Name, ap.Parameter.DataType,
				ap.Parameter.Required, ap.Parameter.HelpText),
		})
	}
	return &dto.ActionResponse{
		Name:       action.Name,
		Function:   action.Function,
		Parameters: parameters,
		CreatedAt:  action.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  action.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
