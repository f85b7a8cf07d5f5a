package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"researcher-agent-go/internal/fetcher"
	"researcher-agent-go/internal/model"
	"researcher-agent-go/internal/service"
	"researcher-agent-go/internal/session"
)

type fakeFetcher struct {
	fragments []model.ResearcherRecord
}

func (f *fakeFetcher) Source() model.Source { return model.SourcePubMed }

func (f *fakeFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	return f.fragments, nil
}

type fakeEnhancer struct {
	answer string
}

func (e *fakeEnhancer) EnhanceRecord(ctx context.Context, apiKey string, rec model.ResearcherRecord) (model.ResearcherRecord, error) {
	return rec, nil
}

func (e *fakeEnhancer) GenerateRecord(ctx context.Context, apiKey, name, specialization string) (model.ResearcherRecord, error) {
	return model.ResearcherRecord{Name: name}, nil
}

func (e *fakeEnhancer) AnswerQuestion(ctx context.Context, apiKey string, rec *model.ResearcherRecord, question string) (string, error) {
	return e.answer, nil
}

func newTestHandler(fragments []model.ResearcherRecord, answer string) *ResearcherHandler {
	svc := service.NewResearcherService(
		[]fetcher.SiteFetcher{&fakeFetcher{fragments: fragments}},
		&fakeEnhancer{answer: answer},
		nil, "", time.Hour, nil,
	)
	return NewResearcherHandler(svc, session.NewStore())
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestHandler([]model.ResearcherRecord{
		{Name: "Dr. Jane Smith", Affiliation: "Mayo Clinic"},
	}, "")

	body := `{"name": "Dr. Jane Smith", "specialization": "Oncology"}`
	req := httptest.NewRequest(http.MethodPost, "/api/search-researcher", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Errorf("response = %v", resp)
	}
	if resp["session_id"] == "" || resp["session_id"] == nil {
		t.Error("session_id missing from response")
	}
	researcher := resp["researcher"].(map[string]any)
	if researcher["affiliation"] != "Mayo Clinic" {
		t.Errorf("researcher = %v", researcher)
	}
	if resp["report"] == "" {
		t.Error("report missing from response")
	}
}

func TestSearchEndpointMissingName(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/search-researcher", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchEndpointBadJSON(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/search-researcher", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadCSVEndpoint(t *testing.T) {
	h := newTestHandler(nil, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "researchers.csv")
	fw.Write([]byte("Name,Affiliation\nDr. Jane Smith,Mayo Clinic\n,NoName\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.UploadCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp["count"] != float64(1) || resp["skipped"] != float64(1) {
		t.Errorf("response = %v", resp)
	}
}

func TestSessionContinuity(t *testing.T) {
	h := newTestHandler([]model.ResearcherRecord{{Name: "X", Affiliation: "MIT"}}, "At MIT.")

	// 1. set-api-key 创建会话
	req := httptest.NewRequest(http.MethodPost, "/api/set-api-key", strings.NewReader(`{"api_key": "sk-test"}`))
	rec := httptest.NewRecorder()
	h.SetAPIKey(rec, req)

	resp := decodeResponse(t, rec)
	sessionID, _ := resp["session_id"].(string)
	if sessionID == "" {
		t.Fatal("no session_id returned")
	}

	// 2. 同会话搜索
	req = httptest.NewRequest(http.MethodPost, "/api/search-researcher", strings.NewReader(`{"name": "X"}`))
	req.Header.Set(SessionHeader, sessionID)
	rec = httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}

	// 3. 同会话提问，会话里已有API key和当前profile
	req = httptest.NewRequest(http.MethodPost, "/api/ask-question", strings.NewReader(`{"question": "Where?"}`))
	req.Header.Set(SessionHeader, sessionID)
	rec = httptest.NewRecorder()
	h.AskQuestion(rec, req)

	resp = decodeResponse(t, rec)
	if resp["answer"] != "At MIT." {
		t.Errorf("answer = %v", resp["answer"])
	}

	// 4. 同会话生成报告
	req = httptest.NewRequest(http.MethodPost, "/api/generate-report", nil)
	req.Header.Set(SessionHeader, sessionID)
	rec = httptest.NewRecorder()
	h.GenerateReport(rec, req)

	resp = decodeResponse(t, rec)
	if report, _ := resp["report"].(string); !strings.Contains(report, "X") {
		t.Errorf("report = %v", resp["report"])
	}
}

func TestAskQuestionWithoutKey(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/ask-question", strings.NewReader(`{"question": "Who?"}`))
	rec := httptest.NewRecorder()
	h.AskQuestion(rec, req)

	// AI错误行内返回，HTTP 200
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with inline error", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] == true || resp["error"] == nil {
		t.Errorf("response = %v", resp)
	}
}

func TestGenerateReportBeforeSearch(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/generate-report", nil)
	rec := httptest.NewRecorder()
	h.GenerateReport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchWithWebsitesRequiresList(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/search-with-websites", strings.NewReader(`{"name": "X"}`))
	rec := httptest.NewRecorder()
	h.SearchWithWebsites(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}
