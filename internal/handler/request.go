package handler

// SearchRequest 搜索请求体
type SearchRequest struct {
	Name           string   `json:"name"`
	Specialization string   `json:"specialization,omitempty"`
	APIKey         string   `json:"api_key,omitempty"`
	Websites       []string `json:"websites,omitempty"`
}

// QuestionRequest 提问请求体
type QuestionRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"api_key,omitempty"`
}

// APIKeyRequest 设置API key请求体
type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}
