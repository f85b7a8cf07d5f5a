package fetcher

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"researcher-agent-go/internal/model"
)

// CustomFetcher 自定义网站获取器
// 用于search-with-websites：抓取用户给定的URL列表，
// 从通用页面结构中尽力抽取与研究者相关的内容
type CustomFetcher struct {
	urls       []string
	httpClient *http.Client
}

// NewCustomFetcher 创建自定义网站获取器
func NewCustomFetcher(client *http.Client, urls []string) *CustomFetcher {
	return &CustomFetcher{
		urls:       urls,
		httpClient: client,
	}
}

// Source 数据来源
func (f *CustomFetcher) Source() model.Source {
	return model.SourceCustomWebsite
}

// Fetch 逐个抓取URL，每个成功解析的页面产生一个fragment
// 单个URL失败只记日志，不影响其余URL
func (f *CustomFetcher) Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error) {
	fragments := []model.ResearcherRecord{}

	for _, pageURL := range f.urls {
		doc, err := fetchDocument(ctx, f.httpClient, pageURL)
		if err != nil {
			log.Printf("[Custom Fetcher] skip %s: %v", pageURL, err)
			continue
		}

		rec := parseGenericPage(doc, pageURL, name)
		if rec.IsEmpty() {
			continue
		}
		fragments = append(fragments, rec)
	}

	return fragments, nil
}

// parseGenericPage 从任意页面抽取：提到研究者名字的段落作为summary素材，
// 页面中较长的链接文本作为候选论文标题
func parseGenericPage(doc *goquery.Document, pageURL, name string) model.ResearcherRecord {
	rec := model.ResearcherRecord{
		Name:       name,
		Source:     model.SourceCustomWebsite,
		SourceURLs: map[string]string{string(model.SourceCustomWebsite): pageURL},
	}

	lower := strings.ToLower(name)

	// 提到名字的前几个段落
	snippets := []string{}
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" || !strings.Contains(strings.ToLower(text), lower) {
			return true
		}
		snippets = append(snippets, text)
		return len(snippets) < 3
	})
	rec.Summary = strings.Join(snippets, " ")

	// 长链接文本往往是论文/报告标题
	doc.Find("a").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) < 40 {
			return true
		}
		pub := model.Publication{Title: text}
		if href, ok := s.Attr("href"); ok {
			pub.URL = absoluteURL(pageURL, href)
		}
		rec.Publications = append(rec.Publications, pub)
		return len(rec.Publications) < maxResults
	})

	return rec
}
