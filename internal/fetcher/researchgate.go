package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"researcher-agent-go/internal/model"
)

// ResearchGateFetcher ResearchGate学术网络获取器
// 两步流程：搜索页找到profile链接，再抓取profile页
type ResearchGateFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewResearchGateFetcher 创建ResearchGate获取器
func NewResearchGateFetcher(client *http.Client) *ResearchGateFetcher {
	return &ResearchGateFetcher{
		baseURL:    "https://www.researchgate.net",
		httpClient: client,
	}
}

// Source 数据来源
func (f *ResearchGateFetcher) Source() model.Source {
	return model.SourceResearchGate
}

// Fetch 搜索研究者并抓取其profile页
func (f *ResearchGateFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	searchURL := f.baseURL + "/search/researcher?q=" + searchQuery(name, "")

	doc, err := fetchDocument(ctx, f.httpClient, searchURL)
	if err != nil {
		return nil, err
	}

	profilePath := findProfileLink(doc, name)
	if profilePath == "" {
		// 搜索无命中不算错误，降级为空结果
		return nil, nil
	}

	profileURL := absoluteURL(f.baseURL, profilePath)
	profileDoc, err := fetchDocument(ctx, f.httpClient, profileURL)
	if err != nil {
		return nil, fmt.Errorf("profile page: %w", err)
	}

	rec := f.parseProfile(profileDoc, name)
	rec.SourceURLs = map[string]string{string(model.SourceResearchGate): profileURL}
	return []model.ResearcherRecord{rec}, nil
}

// findProfileLink 在搜索结果卡片中找与name匹配的profile链接
func findProfileLink(doc *goquery.Document, name string) string {
	link := ""
	lower := strings.ToLower(name)

	doc.Find(".nova-legacy-c-card__body").EachWithBreak(func(i int, s *goquery.Selection) bool {
		a := s.Find("a.nova-legacy-e-link").First()
		if a.Length() == 0 {
			return true
		}
		if !strings.Contains(strings.ToLower(a.Text()), lower) {
			return true
		}
		if href, ok := a.Attr("href"); ok {
			link = href
			return false
		}
		return true
	})

	return link
}

// parseProfile 解析profile页：机构、研究兴趣、论文
func (f *ResearchGateFetcher) parseProfile(doc *goquery.Document, name string) model.ResearcherRecord {
	rec := model.ResearcherRecord{
		Name:   name,
		Source: model.SourceResearchGate,
	}

	if full := strings.TrimSpace(doc.Find("h1").First().Text()); full != "" {
		rec.Name = full
	}

	rec.Affiliation = strings.TrimSpace(doc.Find(".institution-name").First().Text())

	doc.Find(".research-interest-item").Each(func(i int, s *goquery.Selection) {
		if interest := strings.TrimSpace(s.Text()); interest != "" {
			rec.ResearchInterests = append(rec.ResearchInterests, interest)
		}
	})

	doc.Find(".research-item-title").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}
		a := s.Find("a").First()
		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = strings.TrimSpace(s.Text())
		}
		if title == "" {
			return
		}
		pub := model.Publication{Title: title}
		if href, ok := a.Attr("href"); ok {
			pub.URL = absoluteURL(f.baseURL, href)
		}
		rec.Publications = append(rec.Publications, pub)
	})

	return rec
}
