package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/robert-f-ruff/rules-engine/internal/dto"
	"github.com/robert-f-ruff/rules-engine/internal/fieldspec"
	"github.com/robert-f-ruff/rules-engine/internal/service"
	"github.com/robert-f-ruff/rules-engine/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock CriterionService ──

type mockCriterionService struct {
	getResult    *dto.CriterionResponse
	getErr       error
	listResult   []dto.CriterionResponse
	listErr      error
	createResult *dto.CriterionResponse
	createErr    error
	updateResult *dto.CriterionResponse
	updateErr    error
	deleteErr    error
}

func (m *mockCriterionService) GetByName(_ context.Context, _ string) (*dto.CriterionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCriterionService) List(_ context.Context) ([]dto.CriterionResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCriterionService) Create(_ context.Context, _ *dto.CreateCriterionRequest) (*dto.CriterionResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCriterionService) Update(_ context.Context, _ string, _ *dto.UpdateCriterionRequest) (*dto.CriterionResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCriterionService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock ParameterService ──

type mockParameterService struct {
	getResult    *dto.ParameterResponse
	getErr       error
	listResult   []dto.ParameterResponse
	listErr      error
	createResult *dto.ParameterResponse
	createErr    error
	updateResult *dto.ParameterResponse
	updateErr    error
	deleteErr    error
}

func (m *mockParameterService) GetByName(_ context.Context, _ string) (*dto.ParameterResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockParameterService) List(_ context.Context) ([]dto.ParameterResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockParameterService) Create(_ context.Context, _ *dto.CreateParameterRequest) (*dto.ParameterResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockParameterService) Update(_ context.Context, _ string, _ *dto.UpdateParameterRequest) (*dto.ParameterResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockParameterService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock ActionService ──

type mockActionService struct {
	getResult    *dto.ActionResponse
	getErr       error
	listResult   []dto.ActionResponse
	listErr      error
	fieldsResult []fieldspec.Spec
	fieldsErr    error
	createResult *dto.ActionResponse
	createErr    error
	updateResult *dto.ActionResponse
	updateErr    error
	deleteErr    error
}

func (m *mockActionService) GetByName(_ context.Context, _ string) (*dto.ActionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockActionService) List(_ context.Context) ([]dto.ActionResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockActionService) ParameterFields(_ context.Context, _ string) ([]fieldspec.Spec, error) {
	return m.fieldsResult, m.fieldsErr
}
func (m *mockActionService) Create(_ context.Context, _ *dto.CreateActionRequest) (*dto.ActionResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockActionService) Update(_ context.Context, _ string, _ *dto.UpdateActionRequest) (*dto.ActionResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockActionService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock RuleService ──

type mockRuleService struct {
	listResult   *dto.RuleListResponse
	listErr      error
	getResult    *dto.RuleResponse
	getErr       error
	saveResult   *dto.SaveRuleResponse
	saveErr      error
	deleteResult *dto.EngineStatusResponse
	deleteErr    error
	savedID      string
}

func (m *mockRuleService) List(_ context.Context) (*dto.RuleListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockRuleService) GetByID(_ context.Context, _ string) (*dto.RuleResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockRuleService) Save(_ context.Context, id string, _ *dto.SaveRuleRequest) (*dto.SaveRuleResponse, error) {
	m.savedID = id
	return m.saveResult, m.saveErr
}
func (m *mockRuleService) Delete(_ context.Context, _ string) (*dto.EngineStatusResponse, error) {
	return m.deleteResult, m.deleteErr
}

// ── Mock EngineService ──

type mockEngineService struct {
	statusResult dto.EngineStatusResponse
	reloadResult dto.EngineStatusResponse
	notice       string
}

func (m *mockEngineService) Status(_ context.Context) dto.EngineStatusResponse {
	return m.statusResult
}
func (m *mockEngineService) Reload(_ context.Context) dto.EngineStatusResponse {
	return m.reloadResult
}
func (m *mockEngineService) ReloadAndNotify(_ context.Context) dto.EngineStatusResponse {
	return m.reloadResult
}
func (m *mockEngineService) TakeNotice(_ context.Context) string {
	return m.notice
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRules(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// CriterionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCriterionHandler_Create_Success(t *testing.T) {
	mock := &mockCriterionService{
		createResult: &dto.CriterionResponse{Name: "Is Pleasant", Logic: "temperature >= 65"},
	}
	h := NewCriterionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/criteria", jsonBody(dto.CreateCriterionRequest{
		Name:  "Is Pleasant",
		Logic: "temperature >= 65",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/criteria", h.CreateCriterion)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestCriterionHandler_Create_MissingLogic(t *testing.T) {
	h := NewCriterionHandler(&mockCriterionService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/criteria", jsonBody(map[string]string{"name": "Is Pleasant"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/criteria", h.CreateCriterion)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCriterionHandler_Get_NotFound(t *testing.T) {
	mock := &mockCriterionService{getErr: service.ErrCriterionNotFound}
	h := NewCriterionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/criteria/missing", nil)

	r := gin.New()
	r.GET("/criteria/:name", h.GetCriterion)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ParameterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestParameterHandler_Create_UnknownDataType(t *testing.T) {
	mock := &mockParameterService{createErr: service.ErrParameterBadType}
	h := NewParameterHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/parameters", jsonBody(dto.CreateParameterRequest{
		Name:     "Threshold",
		DataType: "number",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/parameters", h.CreateParameter)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected error code 12003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ActionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestActionHandler_GetParameterFields_Success(t *testing.T) {
	mock := &mockActionService{
		fieldsResult: []fieldspec.Spec{
			fieldspec.New("Send email to", "email", true, ""),
			fieldspec.New("Copy email to", "email", false, ""),
		},
	}
	h := NewActionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/actions/Send%20Email/parameters", nil)

	r := gin.New()
	r.GET("/actions/:name/parameters", h.GetActionParameterFields)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data struct {
			List []fieldspec.Spec `json:"list"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.List) != 2 || resp.Data.List[0].Widget != fieldspec.WidgetEmail {
		t.Errorf("字段列表不符: %+v", resp.Data.List)
	}
}

func TestActionHandler_Create_UnknownParameter(t *testing.T) {
	mock := &mockActionService{createErr: service.ErrActionUnknownParameter}
	h := NewActionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/actions", jsonBody(dto.CreateActionRequest{
		Name:     "Send Email",
		Function: "SendEmail",
		Parameters: []dto.ActionParameterInput{
			{Parameter: "Missing", ParameterNumber: 1},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/actions", h.CreateAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13003 {
		t.Errorf("expected error code 13003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RuleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRuleHandler_Create_Success(t *testing.T) {
	mock := &mockRuleService{
		saveResult: &dto.SaveRuleResponse{
			Rule:    dto.RuleResponse{ID: "rule-1", Name: "Test Rule 1"},
			Changed: true,
			Engine:  &dto.EngineStatusResponse{ResponseStatus: "OK", StatusText: "Ruleset successfully reloaded"},
		},
	}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/rules", jsonBody(dto.SaveRuleRequest{
		Name:     "Test Rule 1",
		Criteria: []string{"Is Pleasant"},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/rules", h.CreateRule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.savedID != "" {
		t.Errorf("创建应以空 ID 调用 Save，实际=%q", mock.savedID)
	}
}

func TestRuleHandler_Update_PassesID(t *testing.T) {
	mock := &mockRuleService{
		saveResult: &dto.SaveRuleResponse{Rule: dto.RuleResponse{ID: "rule-1"}},
	}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/rules/rule-1", jsonBody(dto.SaveRuleRequest{Name: "Renamed"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/rules/:id", h.UpdateRule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.savedID != "rule-1" {
		t.Errorf("期望以 rule-1 调用 Save，实际=%q", mock.savedID)
	}
}

func TestRuleHandler_Save_ValidationErrors(t *testing.T) {
	errs := &dto.SaveRuleErrors{}
	errs.RuleErrors().AddField("name", "此字段为必填项")
	errs.ActionErrors(0).AddNonField(service.ActDeleteParameterChange)
	mock := &mockRuleService{saveErr: &service.RuleValidationError{Errors: errs}}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/rules", jsonBody(dto.SaveRuleRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/rules", h.CreateRule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	var resp struct {
		Code    int                `json:"code"`
		Details dto.SaveRuleErrors `json:"details"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
	if len(resp.Details.Rule.Fields["name"]) == 0 {
		t.Errorf("期望 name 字段错误回传，实际: %+v", resp.Details)
	}
	if resp.Details.Actions[0].NonField[0] != service.ActDeleteParameterChange {
		t.Errorf("期望冲突报错原文回传，实际: %+v", resp.Details.Actions)
	}
}

func TestRuleHandler_Save_Conflict(t *testing.T) {
	mock := &mockRuleService{saveErr: service.ErrRuleSaveConflict}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/rules", jsonBody(dto.SaveRuleRequest{Name: "Test"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/rules", h.CreateRule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14003 {
		t.Errorf("expected error code 14003, got %d", resp.Code)
	}
}

func TestRuleHandler_Get_NotFound(t *testing.T) {
	mock := &mockRuleService{getErr: service.ErrRuleNotFound}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rules/missing", nil)

	r := gin.New()
	r.GET("/rules/:id", h.GetRule)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRuleHandler_List_Success(t *testing.T) {
	mock := &mockRuleService{
		listResult: &dto.RuleListResponse{
			Rules:  []dto.RuleListItem{{ID: "rule-1", Name: "Test Rule 1", ActionCount: 1}},
			Engine: dto.EngineStatusResponse{ResponseStatus: "OK", StatusText: "Engine is running"},
			Notice: "Ruleset successfully reloaded",
		},
	}
	h := NewRuleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rules", nil)

	r := gin.New()
	r.GET("/rules", h.ListRules)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data dto.RuleListResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Notice != "Ruleset successfully reloaded" {
		t.Errorf("期望提示回传，实际=%q", resp.Data.Notice)
	}
}

// ═══════════════════════════════════════════════════════════
// EngineHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEngineHandler_GetStatus(t *testing.T) {
	mock := &mockEngineService{
		statusResult: dto.EngineStatusResponse{ResponseStatus: "OK", StatusText: "Engine is running"},
	}
	h := NewEngineHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/engine/status", nil)

	r := gin.New()
	r.GET("/engine/status", h.GetStatus)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data dto.EngineStatusResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.StatusText != "Engine is running" {
		t.Errorf("状态文本不符: %+v", resp.Data)
	}
}

func TestEngineHandler_Reload(t *testing.T) {
	mock := &mockEngineService{
		reloadResult: dto.EngineStatusResponse{ResponseStatus: "Connection Error", StatusText: "connection refused"},
	}
	h := NewEngineHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/engine/reload", nil)

	r := gin.New()
	r.POST("/engine/reload", h.Reload)
	r.ServeHTTP(w, req)

	// 引擎失败不是 HTTP 错误，状态文本照常回传
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data dto.EngineStatusResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ResponseStatus != "Connection Error" {
		t.Errorf("期望降级结果回传，实际: %+v", resp.Data)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportRules_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("fake-xlsx-bytes"),
		filename: "规则集_20260901.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/rules", nil)

	r := gin.New()
	r.GET("/export/rules", h.ExportRules)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("期望设置 Content-Disposition")
	}
	if w.Body.String() != "fake-xlsx-bytes" {
		t.Error("响应体应为导出内容")
	}
}

func TestExportHandler_ExportRules_NoRules(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoRules}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/rules", nil)

	r := gin.New()
	r.GET("/export/rules", h.ExportRules)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16001 {
		t.Errorf("expected error code 16001, got %d", resp.Code)
	}
}
