package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"researcher-agent-go/internal/model"
	"researcher-agent-go/internal/service"
	"researcher-agent-go/internal/session"
)

// SessionHeader 会话ID请求头
// 未带或无效时懒创建新会话，响应中回传session_id
const SessionHeader = "X-Session-ID"

// ResearcherHandler 研究者聚合HTTP处理器
type ResearcherHandler struct {
	service  *service.ResearcherService
	sessions *session.Store
}

// NewResearcherHandler 创建处理器
func NewResearcherHandler(svc *service.ResearcherService, sessions *session.Store) *ResearcherHandler {
	return &ResearcherHandler{service: svc, sessions: sessions}
}

// response 统一响应结构
type response struct {
	Success    bool                    `json:"success"`
	SessionID  string                  `json:"session_id,omitempty"`
	Researcher *model.ResearcherRecord `json:"researcher,omitempty"`
	Report     string                  `json:"report,omitempty"`
	Answer     string                  `json:"answer,omitempty"`
	Count      int                     `json:"count,omitempty"`
	Skipped    int                     `json:"skipped,omitempty"`
	AIError    string                  `json:"ai_error,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

func (h *ResearcherHandler) session(r *http.Request) *session.Session {
	return h.sessions.GetOrCreate(r.Header.Get(SessionHeader))
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Search 搜索研究者
// POST /api/search-researcher
// Body: {"name": "...", "specialization": "...", "api_key": "..."}
func (h *ResearcherHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}

	sess := h.session(r)

	result, err := h.service.Search(r.Context(), sess, req.Name, req.Specialization, req.APIKey)
	if err == service.ErrNameRequired {
		writeJSON(w, http.StatusBadRequest, response{SessionID: sess.ID, Error: err.Error()})
		return
	}
	if err != nil {
		log.Printf("[Handler] search failed for %q: %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, response{SessionID: sess.ID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:    true,
		SessionID:  sess.ID,
		Researcher: result.Record,
		Report:     result.Report,
		AIError:    result.AIError,
	})
}

// SearchWithWebsites 用自定义网站列表搜索
// POST /api/search-with-websites
// Body: {"name": "...", "websites": ["https://...", ...]}
func (h *ResearcherHandler) SearchWithWebsites(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}
	if len(req.Websites) == 0 {
		writeJSON(w, http.StatusBadRequest, response{Error: "websites list is required"})
		return
	}

	sess := h.session(r)

	result, err := h.service.SearchWithWebsites(r.Context(), sess, req.Name, req.Specialization, req.Websites, req.APIKey)
	if err == service.ErrNameRequired {
		writeJSON(w, http.StatusBadRequest, response{SessionID: sess.ID, Error: err.Error()})
		return
	}
	if err != nil {
		log.Printf("[Handler] website search failed for %q: %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, response{SessionID: sess.ID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:    true,
		SessionID:  sess.ID,
		Researcher: result.Record,
		Report:     result.Report,
		AIError:    result.AIError,
	})
}

// UploadCSV 上传CSV文件
// POST /api/upload-csv (multipart/form-data, field "file")
func (h *ResearcherHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "file field is required"})
		return
	}
	defer file.Close()

	sess := h.session(r)

	result, err := h.service.ImportCSV(sess, file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{SessionID: sess.ID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:   true,
		SessionID: sess.ID,
		Count:     len(result.Records),
		Skipped:   result.Skipped,
	})
}

// AskQuestion 针对当前profile提问
// POST /api/ask-question
// Body: {"question": "...", "api_key": "..."}
func (h *ResearcherHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}

	sess := h.session(r)

	answer, err := h.service.AskQuestion(r.Context(), sess, req.Question, req.APIKey)
	if err != nil {
		// AI失败作为行内错误返回，不作为HTTP错误（profile仍可用）
		writeJSON(w, http.StatusOK, response{SessionID: sess.ID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, SessionID: sess.ID, Answer: answer})
}

// SetAPIKey 设置会话API key
// POST /api/set-api-key
// Body: {"api_key": "sk-..."}
func (h *ResearcherHandler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}
	if req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, response{Error: "api_key is required"})
		return
	}

	sess := h.session(r)
	h.service.SetAPIKey(sess, req.APIKey)

	writeJSON(w, http.StatusOK, response{Success: true, SessionID: sess.ID})
}

// GenerateReport 为当前profile生成报告
// POST /api/generate-report
func (h *ResearcherHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)

	out, err := h.service.GenerateReport(sess)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{SessionID: sess.ID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, SessionID: sess.ID, Report: out})
}

// Health 健康检查
func (h *ResearcherHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
