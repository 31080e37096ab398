package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/robert-f-ruff/rules-engine/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRules      = errors.New("当前没有任何规则可以导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 规则集导出为 Excel (.xlsx)，供运营侧核对引擎当前加载的规则
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：每条规则动作参数占一行，规则名与条件在首行呈现
type ExportService interface {
	// ExportRules 导出全部规则为 Excel
	ExportRules(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportRules 导出规则集为 Excel
//
// 输出格式：
//   - 表头: | 规则 | 条件 | 序号 | 动作 | 执行函数 | 参数 | 参数值 |
//   - 每个参数值一行；无参数的动作占一行；无动作的规则占一行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error
func (s *exportService) ExportRules(ctx context.Context) (*bytes.Buffer, string, error) {
	rules, err := s.repo.Rule.List(ctx)
	if err != nil {
		s.logger.Error("查询规则失败", zap.Error(err))
		return nil, "", err
	}
	if len(rules) == 0 {
		return nil, "", ErrExportNoRules
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "规则集"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 32)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 32)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"规则", "条件", "序号", "动作", "执行函数", "参数", "参数值"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for i := range rules {
		// 列表查询不带参数明细，逐条回读完整记录
		rule, err := s.repo.Rule.GetByID(ctx, rules[i].RuleID)
		if err != nil {
			s.logger.Error("回读规则失败", zap.String("id", rules[i].RuleID), zap.Error(err))
			return nil, "", err
		}

		criteria := ""
		for j, c := range rule.Criteria {
			if j > 0 {
				criteria += ", "
			}
			criteria += c.Name
		}

		f.SetCellValue(sheetName, cell("A", row), rule.Name)
		f.SetCellValue(sheetName, cell("B", row), criteria)

		if len(rule.Actions) == 0 {
			row++
			continue
		}

		for _, action := range rule.Actions {
			f.SetCellValue(sheetName, cell("C", row), action.ActionNumber)
			f.SetCellValue(sheetName, cell("D", row), action.ActionName)
			f.SetCellValue(sheetName, cell("E", row), action.Action.Function)

			if len(action.Parameters) == 0 {
				row++
				continue
			}
			for _, parameter := range action.Parameters {
				f.SetCellValue(sheetName, cell("F", row), parameter.ParameterName)
				f.SetCellValue(sheetName, cell("G", row), parameter.ParameterValue)
				row++
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("规则集_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
