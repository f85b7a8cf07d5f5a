// Package aggregator 把多个来源的fragment合并为一份完整的researcher记录。
// 合并是对有序fragment序列的纯函数，便于独立测试：
// 标量字段取第一个非空值，列表字段去重拼接（忽略大小写）。
package aggregator

import (
	"strings"

	"researcher-agent-go/internal/model"
)

// Merge 按来源优先级合并fragments
// 调用方保证顺序：CSV在前，之后按配置的fetcher顺序
// 零个fragment时返回只有Name的记录
func Merge(name string, fragments []model.ResearcherRecord) model.ResearcherRecord {
	merged := model.ResearcherRecord{
		Name:       name,
		SourceURLs: map[string]string{},
	}

	seenInterests := map[string]bool{}
	seenPubs := map[string]bool{}
	seenTrials := map[string]bool{}
	seenEdu := map[string]bool{}

	for _, frag := range fragments {
		// 标量：first-wins
		if merged.Specialization == "" {
			merged.Specialization = frag.Specialization
		}
		if merged.Affiliation == "" {
			merged.Affiliation = frag.Affiliation
		}
		if merged.Email == "" {
			merged.Email = frag.Email
		}
		if merged.Phone == "" {
			merged.Phone = frag.Phone
		}
		if merged.Location == "" {
			merged.Location = frag.Location
		}
		if merged.Summary == "" {
			merged.Summary = frag.Summary
		}
		if merged.KeyContributions == "" {
			merged.KeyContributions = frag.KeyContributions
		}

		// 列表：union，大小写不敏感去重
		for _, interest := range frag.ResearchInterests {
			if addOnce(seenInterests, interest) {
				merged.ResearchInterests = append(merged.ResearchInterests, interest)
			}
		}
		for _, pub := range frag.Publications {
			if addOnce(seenPubs, pub.Title) {
				merged.Publications = append(merged.Publications, pub)
			}
		}
		for _, trial := range frag.ClinicalTrials {
			if addOnce(seenTrials, trial.Title) {
				merged.ClinicalTrials = append(merged.ClinicalTrials, trial)
			}
		}
		for _, edu := range frag.Education {
			if addOnce(seenEdu, edu) {
				merged.Education = append(merged.Education, edu)
			}
		}

		for source, u := range frag.SourceURLs {
			if u != "" {
				merged.SourceURLs[source] = u
			}
		}
	}

	if len(merged.SourceURLs) == 0 {
		merged.SourceURLs = nil
	}
	return merged
}

// addOnce key非空且未出现过时记录并返回true
func addOnce(seen map[string]bool, key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" || seen[k] {
		return false
	}
	seen[k] = true
	return true
}
