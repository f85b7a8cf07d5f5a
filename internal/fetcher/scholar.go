package fetcher

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"researcher-agent-go/internal/model"
)

// GoogleScholarFetcher Google Scholar引用索引获取器
type GoogleScholarFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogleScholarFetcher 创建Google Scholar获取器
func NewGoogleScholarFetcher(client *http.Client) *GoogleScholarFetcher {
	return &GoogleScholarFetcher{
		baseURL:    "https://scholar.google.com",
		httpClient: client,
	}
}

// Source 数据来源
func (f *GoogleScholarFetcher) Source() model.Source {
	return model.SourceGoogleScholar
}

// Fetch 搜索Google Scholar并解析结果列表
func (f *GoogleScholarFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	searchURL := f.baseURL + "/scholar?q=" + searchQuery(name, specialization)

	doc, err := fetchDocument(ctx, f.httpClient, searchURL)
	if err != nil {
		return nil, err
	}

	pubs := f.parseResults(doc)
	if len(pubs) == 0 {
		return nil, nil
	}

	return []model.ResearcherRecord{{
		Name:         name,
		Publications: pubs,
		Source:       model.SourceGoogleScholar,
		SourceURLs:   map[string]string{string(model.SourceGoogleScholar): searchURL},
	}}, nil
}

// parseResults 解析搜索结果条目 (.gs_ri)
func (f *GoogleScholarFetcher) parseResults(doc *goquery.Document) []model.Publication {
	pubs := []model.Publication{}

	doc.Find(".gs_ri").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}

		title := s.Find(".gs_rt")
		if title.Length() == 0 {
			return
		}

		pub := model.Publication{
			Title: cleanScholarTitle(title.Text()),
			// .gs_a 是"作者 - 期刊, 年份 - 出版方"的灰色行
			Authors: strings.TrimSpace(s.Find(".gs_a").First().Text()),
		}
		if href, ok := title.Find("a").First().Attr("href"); ok {
			pub.URL = href
		}

		if pub.Title != "" {
			pubs = append(pubs, pub)
		}
	})

	return pubs
}

// cleanScholarTitle 去掉标题前的[PDF][HTML][BOOK]等标记
func cleanScholarTitle(title string) string {
	title = strings.TrimSpace(title)
	for strings.HasPrefix(title, "[") {
		end := strings.Index(title, "]")
		if end == -1 {
			break
		}
		title = strings.TrimSpace(title[end+1:])
	}
	return title
}
