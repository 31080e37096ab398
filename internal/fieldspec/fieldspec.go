// Package fieldspec 依据参数元数据合成动态表单字段。
// 参数的数据类型决定控件种类与值校验规则；未知类型一律退化为自由文本，
// 合成过程本身永不报错。
package fieldspec

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"time"
)

// 参数数据类型
const (
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeEmail    = "email"
	TypeNumber   = "number"
	TypePhone    = "phone"
	TypeText     = "text"
	TypeTime     = "time"
)

// 控件种类（对应 HTML input type）
const (
	WidgetCheckbox = "checkbox"
	WidgetDate     = "date"
	WidgetDateTime = "datetime-local"
	WidgetEmail    = "email"
	WidgetNumber   = "number"
	WidgetTel      = "tel"
	WidgetText     = "text"
	WidgetTime     = "time"
)

// ErrRequired 必填字段缺少值
var ErrRequired = errors.New("此字段为必填项")

// 电话格式固定为 (NNN) NNN-NNNN，不做国际化
var phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)

// datetime / time 接受的输入格式
var (
	dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	timeLayouts     = []string{"15:04:05", "15:04"}
)

// Spec 合成出的字段描述
// 空提交值一律视为「未提供该字段」，仅在 Required 时报错
type Spec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Widget   string `json:"widget"`
	Required bool   `json:"required"`
	HelpText string `json:"help_text"`
	Class    string `json:"class"`

	validate func(string) error
}

// entry 数据类型到控件与校验器的静态分派表项
type entry struct {
	widget   string
	validate func(string) error
}

var dispatch = map[string]entry{
	TypeBoolean:  {WidgetCheckbox, validateBoolean},
	TypeDate:     {WidgetDate, validateDate},
	TypeDateTime: {WidgetDateTime, validateDateTime},
	TypeEmail:    {WidgetEmail, validateEmail},
	TypeNumber:   {WidgetNumber, validateNumber},
	TypePhone:    {WidgetTel, validatePhone},
	TypeText:     {WidgetText, validateText},
	TypeTime:     {WidgetTime, validateTime},
}

// New 依据参数元数据合成字段描述
// 字段标签即参数名；未知数据类型退化为文本字段
func New(name, dataType string, required bool, helpText string) Spec {
	e, ok := dispatch[dataType]
	if !ok {
		e = entry{WidgetText, validateText}
	}
	return Spec{
		Name:     name,
		Label:    name,
		Widget:   e.widget,
		Required: required,
		HelpText: helpText,
		Class:    "form-control",
		validate: e.validate,
	}
}

// Validate 校验提交值
// 空值表示「未提供」：必填字段返回 ErrRequired，可选字段直接通过
func (s Spec) Validate(value string) error {
	if value == "" {
		if s.Required {
			return ErrRequired
		}
		return nil
	}
	return s.validate(value)
}

// ── 各类型校验器 ──

func validateBoolean(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("请输入有效的布尔值: %q", value)
	}
	return nil
}

func validateDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("请输入有效的日期: %q", value)
	}
	return nil
}

func validateDateTime(value string) error {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return fmt.Errorf("请输入有效的日期时间: %q", value)
}

func validateEmail(value string) error {
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("请输入有效的电子邮箱地址: %q", value)
	}
	return nil
}

func validateNumber(value string) error {
	if _, err := strconv.Atoi(value); err != nil {
		return fmt.Errorf("请输入有效的整数: %q", value)
	}
	return nil
}

func validatePhone(value string) error {
	if !phonePattern.MatchString(value) {
		return fmt.Errorf("请输入格式为 (NNN) NNN-NNNN 的电话号码: %q", value)
	}
	return nil
}

func validateText(string) error {
	return nil
}

func validateTime(value string) error {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return nil
		}
	}
	return fmt.Errorf("请输入有效的时间: %q", value)
}

// KnownType 判断给定数据类型是否在受支持的枚举内
// 用于参照数据维护时的入参校验；字段合成本身对未知类型容错
func KnownType(dataType string) bool {
	_, ok := dispatch[dataType]
	return ok
}
