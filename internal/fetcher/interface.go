package fetcher

import (
	"context"

	"researcher-agent-go/internal/model"
)

// SiteFetcher 站点获取器
// 对单个外部站点做一次best-effort搜索，返回零个或多个fragment
// 失败由调用方记录日志并降级为空结果，不向上传播
type SiteFetcher interface {
	Source() model.Source
	Fetch(ctx context.Context, name, specialization string) ([]model.ResearcherRecord, error)
}
