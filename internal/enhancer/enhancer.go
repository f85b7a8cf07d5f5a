package enhancer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"researcher-agent-go/internal/model"
)

// ErrNoAPIKey 未配置OpenAI API key
var ErrNoAPIKey = errors.New("OpenAI API key is not configured")

// Client OpenAI增强客户端
// 每次调用用当时生效的API key新建SDK client，key按request > session > env优先
type Client struct {
	model openai.ChatModel
	// 额外请求选项，测试时用option.WithBaseURL指向fake server
	opts []option.RequestOption
}

// NewClient 创建增强客户端
func NewClient(opts ...option.RequestOption) *Client {
	return &Client{
		model: openai.ChatModelGPT4o,
		opts:  opts,
	}
}

// chat 执行一轮system+user对话，返回assistant文本
func (c *Client) chat(ctx context.Context, apiKey, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, c.opts...)
	client := openai.NewClient(reqOpts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

// enhanceResponse AI增强的JSON结构
type enhanceResponse struct {
	Summary          string   `json:"summary"`
	KeyContributions string   `json:"key_contributions"`
	Education        []string `json:"education"`
}

// EnhanceRecord 用AI从已收集的数据中提炼summary、key contributions，补全education
// 失败时原record原样返回，调用方把错误作为提示信息展示
func (c *Client) EnhanceRecord(ctx context.Context, apiKey string, rec model.ResearcherRecord) (model.ResearcherRecord, error) {
	systemPrompt := "You are a helpful assistant that specializes in analyzing medical researcher profiles and extracting key insights. " +
		"Your responses must be strictly valid JSON with the fields requested."

	userPrompt := fmt.Sprintf(`I have collected the following information about medical researcher %s:

%s

Based on this information, please:
1. Summarize this researcher's background and main areas of expertise in 2-3 sentences
2. Identify their key research contributions
3. Fill in any missing educational details (degrees, institutions, years) that can be inferred

Format your response as JSON with keys: summary, key_contributions, education (array of strings).`,
		rec.Name, buildProfileContext(&rec))

	response, err := c.chat(ctx, apiKey, systemPrompt, userPrompt, 0.3)
	if err != nil {
		return rec, err
	}

	var parsed enhanceResponse
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return rec, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if parsed.Summary != "" {
		rec.Summary = parsed.Summary
	}
	if parsed.KeyContributions != "" {
		rec.KeyContributions = parsed.KeyContributions
	}
	if len(parsed.Education) > len(rec.Education) {
		rec.Education = parsed.Education
	}
	rec.AIEnhanced = true

	return rec, nil
}

// generateResponse AI生成profile的JSON结构
type generateResponse struct {
	Summary           string                `json:"summary"`
	KeyContributions  string                `json:"key_contributions"`
	Affiliation       string                `json:"affiliation"`
	ResearchInterests []string              `json:"research_interests"`
	Education         []string              `json:"education"`
	Publications      []model.Publication   `json:"publications"`
	ClinicalTrials    []model.ClinicalTrial `json:"clinical_trials"`
}

// GenerateRecord 当CSV和所有站点都没有数据时，让AI生成profile
func (c *Client) GenerateRecord(ctx context.Context, apiKey, name, specialization string) (model.ResearcherRecord, error) {
	rec := model.ResearcherRecord{
		Name:           name,
		Specialization: specialization,
		Source:         model.SourceAI,
	}

	specText := ""
	if specialization != "" {
		specText = " who specializes in " + specialization
	}

	systemPrompt := "You are a research assistant specializing in medical research. " +
		"Provide the most accurate information possible about medical researchers in JSON format. " +
		"Focus on accurate education history and direct, valid URLs to publications and clinical trials."

	userPrompt := fmt.Sprintf(`I need comprehensive information about medical researcher %s%s.
Provide: a summary of their background, key research contributions, current affiliation,
research interests, notable publications (with URLs), educational background, and any
clinical trials they are involved in (with URLs).

Format the response as JSON with keys: summary, key_contributions, affiliation,
research_interests (array of strings), education (array of strings),
publications (array of objects with title, authors, journal, url),
clinical_trials (array of objects with title, status, condition, url).`,
		name, specText)

	response, err := c.chat(ctx, apiKey, systemPrompt, userPrompt, 0.3)
	if err != nil {
		return rec, err
	}

	var parsed generateResponse
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return rec, fmt.Errorf("failed to parse AI response: %w", err)
	}

	rec.Summary = parsed.Summary
	rec.KeyContributions = parsed.KeyContributions
	rec.Affiliation = parsed.Affiliation
	rec.ResearchInterests = parsed.ResearchInterests
	rec.Education = parsed.Education
	rec.Publications = fillPublicationURLs(parsed.Publications)
	rec.ClinicalTrials = fillTrialURLs(parsed.ClinicalTrials)
	rec.AIGenerated = true

	return rec, nil
}

// AnswerQuestion 基于profile上下文回答关于研究者的问题
func (c *Client) AnswerQuestion(ctx context.Context, apiKey string, rec *model.ResearcherRecord, question string) (string, error) {
	systemPrompt := "You are a knowledgeable assistant specializing in medical research. " +
		"Provide detailed information about medical researchers based on the available data. " +
		"When using information not provided in the context, indicate this in your answer."

	context := "No researcher profile is currently loaded."
	if rec != nil {
		context = fmt.Sprintf("Information about %s:\n\n%s", rec.Name, buildProfileContext(rec))
	}

	userPrompt := fmt.Sprintf("%s\n\nQuestion: %s\n\nPlease provide a detailed answer based on the information available.", context, question)

	return c.chat(ctx, apiKey, systemPrompt, userPrompt, 0.5)
}

// buildProfileContext 把record的非空字段拼成prompt上下文
func buildProfileContext(rec *model.ResearcherRecord) string {
	parts := []string{}

	if rec.Specialization != "" {
		parts = append(parts, "Specialization: "+rec.Specialization)
	}
	if rec.Affiliation != "" {
		parts = append(parts, "Affiliation: "+rec.Affiliation)
	}
	if rec.Email != "" {
		parts = append(parts, "Email: "+rec.Email)
	}
	if rec.Location != "" {
		parts = append(parts, "Location: "+rec.Location)
	}
	if len(rec.ResearchInterests) > 0 {
		parts = append(parts, "Research Interests: "+strings.Join(rec.ResearchInterests, ", "))
	}
	if len(rec.Publications) > 0 {
		pubs := rec.Publications
		if len(pubs) > 5 {
			pubs = pubs[:5]
		}
		data, _ := json.MarshalIndent(pubs, "", "  ")
		parts = append(parts, "Publications:\n"+string(data))
	}
	if len(rec.ClinicalTrials) > 0 {
		trials := rec.ClinicalTrials
		if len(trials) > 3 {
			trials = trials[:3]
		}
		data, _ := json.MarshalIndent(trials, "", "  ")
		parts = append(parts, "Clinical Trials:\n"+string(data))
	}
	if len(rec.Education) > 0 {
		parts = append(parts, "Education: "+strings.Join(rec.Education, "; "))
	}
	if rec.Summary != "" {
		parts = append(parts, "Summary: "+rec.Summary)
	}
	if rec.KeyContributions != "" {
		parts = append(parts, "Key Contributions: "+rec.KeyContributions)
	}

	if len(parts) == 0 {
		return "No detailed information available."
	}
	return strings.Join(parts, "\n\n")
}

var jsonBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// extractJSON 从LLM响应中提取JSON（处理markdown代码块）
func extractJSON(response string) string {
	if matches := jsonBlockRe.FindStringSubmatch(response); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 没有代码块，找 { } 包围的内容
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		return response[start : end+1]
	}

	return response
}

// fillPublicationURLs 给缺URL的论文补一个PubMed搜索链接
func fillPublicationURLs(pubs []model.Publication) []model.Publication {
	for i := range pubs {
		if pubs[i].URL == "" && pubs[i].Title != "" {
			pubs[i].URL = "https://pubmed.ncbi.nlm.nih.gov/?term=" + strings.ReplaceAll(pubs[i].Title, " ", "+")
		}
	}
	return pubs
}

// fillTrialURLs 给缺URL的试验补一个ClinicalTrials搜索链接
func fillTrialURLs(trials []model.ClinicalTrial) []model.ClinicalTrial {
	for i := range trials {
		if trials[i].URL == "" && trials[i].Title != "" {
			trials[i].URL = "https://clinicaltrials.gov/search?term=" + strings.ReplaceAll(trials[i].Title, " ", "+")
		}
	}
	return trials
}
