package fetcher

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"researcher-agent-go/internal/model"
)

// maxResults 每个来源最多取前10条结果
const maxResults = 10

// PubMedFetcher PubMed论文索引获取器
type PubMedFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewPubMedFetcher 创建PubMed获取器
func NewPubMedFetcher(client *http.Client) *PubMedFetcher {
	return &PubMedFetcher{
		baseURL:    "https://pubmed.ncbi.nlm.nih.gov",
		httpClient: client,
	}
}

// Source 数据来源
func (f *PubMedFetcher) Source() model.Source {
	return model.SourcePubMed
}

// Fetch 搜索PubMed并解析结果列表
func (f *PubMedFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	searchURL := f.baseURL + "/?term=" + searchQuery(name, specialization)

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
		Source:       model.SourcePubMed,
		SourceURLs:   map[string]string{string(model.SourcePubMed): searchURL},
	}}, nil
}

// parseResults 解析搜索结果页的docsum列表
func (f *PubMedFetcher) parseResults(doc *goquery.Document) []model.Publication {
	pubs := []model.Publication{}

	doc.Find(".docsum-content").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}

		title := s.Find(".docsum-title")
		if title.Length() == 0 {
			return
		}

		pub := model.Publication{
			Title:   strings.TrimSpace(title.Text()),
			Authors: strings.TrimSpace(s.Find(".docsum-authors").First().Text()),
			Journal: strings.TrimSpace(s.Find(".docsum-journal-citation").First().Text()),
		}
		if href, ok := title.Attr("href"); ok {
			pub.URL = absoluteURL(f.baseURL, href)
		}

		if pub.Title != "" {
			pubs = append(pubs, pub)
		}
	})

	return pubs
}
