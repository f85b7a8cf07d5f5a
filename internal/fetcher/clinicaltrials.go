package fetcher

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"researcher-agent-go/internal/model"
)

// ClinicalTrialsFetcher ClinicalTrials.gov注册库获取器
type ClinicalTrialsFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewClinicalTrialsFetcher 创建ClinicalTrials获取器
func NewClinicalTrialsFetcher(client *http.Client) *ClinicalTrialsFetcher {
	return &ClinicalTrialsFetcher{
		baseURL:    "https://clinicaltrials.gov",
		httpClient: client,
	}
}

// Source 数据来源
func (f *ClinicalTrialsFetcher) Source() model.Source {
	return model.SourceClinicalTrials
}

// Fetch 搜索临床试验并解析结果列表
func (f *ClinicalTrialsFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	searchURL := f.baseURL + "/search?term=" + searchQuery(name, "")

	doc, err := fetchDocument(ctx, f.httpClient, searchURL)
	if err != nil {
		return nil, err
	}

	trials := f.parseResults(doc)
	if len(trials) == 0 {
		return nil, nil
	}

	return []model.ResearcherRecord{{
		Name:           name,
		ClinicalTrials: trials,
		Source:         model.SourceClinicalTrials,
		SourceURLs:     map[string]string{string(model.SourceClinicalTrials): searchURL},
	}}, nil
}

// parseResults 解析试验结果条目
func (f *ClinicalTrialsFetcher) parseResults(doc *goquery.Document) []model.ClinicalTrial {
	trials := []model.ClinicalTrial{}

	doc.Find(".ct-search-result").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}

		title := s.Find(".ct-title")
		if title.Length() == 0 {
			return
		}

		trial := model.ClinicalTrial{
			Title:     strings.TrimSpace(title.Text()),
			Status:    strings.TrimSpace(s.Find(".ct-status").First().Text()),
			Condition: strings.TrimSpace(s.Find(".ct-condition").First().Text()),
		}
		if href, ok := title.Find("a").First().Attr("href"); ok {
			trial.URL = absoluteURL(f.baseURL, href)
		}

		if trial.Title != "" {
			trials = append(trials, trial)
		}
	})

	return trials
}
