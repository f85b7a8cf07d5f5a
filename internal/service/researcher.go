package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"researcher-agent-go/internal/aggregator"
	"researcher-agent-go/internal/cache"
	"researcher-agent-go/internal/enhancer"
	"researcher-agent-go/internal/fetcher"
	"researcher-agent-go/internal/importer"
	"researcher-agent-go/internal/model"
	"researcher-agent-go/internal/report"
	"researcher-agent-go/internal/session"
)

// ErrNameRequired 搜索前必须给出名字
var ErrNameRequired = errors.New("researcher name is required")

// Enhancer AI增强能力
type Enhancer interface {
	EnhanceRecord(ctx context.Context, apiKey string, rec model.ResearcherRecord) (model.ResearcherRecord, error)
	GenerateRecord(ctx context.Context, apiKey, name, specialization string) (model.ResearcherRecord, error)
	AnswerQuestion(ctx context.Context, apiKey string, rec *model.ResearcherRecord, question string) (string, error)
}

// SearchResult 一次搜索的结果
type SearchResult struct {
	Record *model.ResearcherRecord
	Report string
	// AI增强失败时的提示信息，不影响profile本身
	AIError string
}

// ResearcherService 聚合pipeline编排
// fetcher顺序即合并优先级（CSV fragment始终在最前）
type ResearcherService struct {
	fetchers   []fetcher.SiteFetcher
	enhancer   Enhancer
	cache      cache.Cache
	envAPIKey  string
	cacheTTL   time.Duration
	httpClient *http.Client
}

// NewResearcherService 创建服务
func NewResearcherService(fetchers []fetcher.SiteFetcher, enh Enhancer, c cache.Cache, envAPIKey string, cacheTTL time.Duration, httpClient *http.Client) *ResearcherService {
	return &ResearcherService{
		fetchers:   fetchers,
		enhancer:   enh,
		cache:      c,
		envAPIKey:  envAPIKey,
		cacheTTL:   cacheTTL,
		httpClient: httpClient,
	}
}

// apiKeyFor key优先级：请求参数 > 会话 > 环境变量
func (s *ResearcherService) apiKeyFor(sess *session.Session, override string) string {
	if override != "" {
		return override
	}
	if sess != nil && sess.APIKey != "" {
		return sess.APIKey
	}
	return s.envAPIKey
}

// Search 搜索研究者：缓存 → CSV → 站点fetcher顺序执行 → 合并 → 可选AI增强
func (s *ResearcherService) Search(ctx context.Context, sess *session.Session, name, specialization, apiKeyOverride string) (*SearchResult, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	// 缓存命中直接返回
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, name)
		if err == nil && cached != nil {
			log.Printf("[Researcher Service] cache HIT for %q", name)
			rec := cached.Record
			sess.Current = &rec
			return &SearchResult{Record: &rec, Report: report.Generate(&rec)}, nil
		}
		log.Printf("[Researcher Service] cache MISS for %q", name)
	}

	result, err := s.search(ctx, sess, name, specialization, s.fetchers, apiKeyOverride)
	if err != nil {
		return nil, err
	}

	// 有实质数据才写缓存
	if s.cache != nil && !result.Record.IsEmpty() {
		if err := s.cache.Set(ctx, name, *result.Record, s.cacheTTL); err != nil {
			log.Printf("[Researcher Service] cache write failed for %q: %v", name, err)
		}
	}

	return result, nil
}

// SearchWithWebsites 用自定义网站列表代替标准站点搜索
// 结果不写共享缓存（URL列表因请求而异）
func (s *ResearcherService) SearchWithWebsites(ctx context.Context, sess *session.Session, name, specialization string, websites []string, apiKeyOverride string) (*SearchResult, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	custom := fetcher.NewCustomFetcher(s.httpClient, websites)
	return s.search(ctx, sess, name, specialization, []fetcher.SiteFetcher{custom}, apiKeyOverride)
}

// search 公共pipeline：fragment收集 → Merge → AI步骤 → 写入会话
func (s *ResearcherService) search(ctx context.Context, sess *session.Session, name, specialization string, fetchers []fetcher.SiteFetcher, apiKeyOverride string) (*SearchResult, error) {
	fragments := []model.ResearcherRecord{}

	// CSV优先
	if csvRec := importer.FindByName(sess.CSVRecords, name); csvRec != nil {
		log.Printf("[Researcher Service] found CSV record for %q", name)
		fragments = append(fragments, *csvRec)
	}

	// 站点按配置顺序串行抓取，单站失败降级为空结果
	for _, f := range fetchers {
		log.Printf("[Researcher Service] fetching %s for %q", f.Source(), name)
		frags, err := f.Fetch(ctx, name, specialization)
		if err != nil {
			log.Printf("[Researcher Service] %s failed for %q: %v", f.Source(), name, err)
			continue
		}
		fragments = append(fragments, frags...)
	}

	merged := aggregator.Merge(name, fragments)
	if merged.Specialization == "" {
		merged.Specialization = specialization
	}

	result := &SearchResult{Record: &merged}
	apiKey := s.apiKeyFor(sess, apiKeyOverride)

	if apiKey != "" {
		if merged.IsEmpty() {
			// 所有来源为空，回退到AI生成
			log.Printf("[Researcher Service] no source data for %q, generating with AI", name)
			generated, err := s.enhancer.GenerateRecord(ctx, apiKey, name, specialization)
			if err != nil {
				result.AIError = err.Error()
			} else {
				merged = generated
				result.Record = &merged
			}
		} else {
			enhanced, err := s.enhancer.EnhanceRecord(ctx, apiKey, merged)
			if err != nil {
				// 增强失败不影响profile展示
				log.Printf("[Researcher Service] AI enhancement failed for %q: %v", name, err)
				result.AIError = err.Error()
			} else {
				merged = enhanced
				result.Record = &merged
			}
		}
	}

	sess.Current = result.Record
	result.Report = report.Generate(result.Record)
	return result, nil
}

// ImportCSV 导入CSV到会话
func (s *ResearcherService) ImportCSV(sess *session.Session, r io.Reader) (*importer.ImportResult, error) {
	result, err := importer.Import(r)
	if err != nil {
		return nil, err
	}

	sess.CSVRecords = result.Records
	log.Printf("[Researcher Service] imported %d CSV records (%d skipped)", len(result.Records), result.Skipped)
	return result, nil
}

// AskQuestion 基于会话当前profile回答问题
func (s *ResearcherService) AskQuestion(ctx context.Context, sess *session.Session, question, apiKeyOverride string) (string, error) {
	if question == "" {
		return "", errors.New("question is required")
	}

	apiKey := s.apiKeyFor(sess, apiKeyOverride)
	if apiKey == "" {
		return "", enhancer.ErrNoAPIKey
	}

	return s.enhancer.AnswerQuestion(ctx, apiKey, sess.Current, question)
}

// GenerateReport 为会话当前profile生成markdown报告
func (s *ResearcherService) GenerateReport(sess *session.Session) (string, error) {
	if sess.Current == nil {
		return "", fmt.Errorf("no researcher data available, search for a researcher first")
	}
	return report.Generate(sess.Current), nil
}

// SetAPIKey 设置会话级API key
func (s *ResearcherService) SetAPIKey(sess *session.Session, apiKey string) {
	sess.APIKey = apiKey
}
