package collector

import (
	"context"
	"time"
)

// Source 是固定的数据源枚举，新增数据源必须同时扩展 processor 的 ID 推导规则
type Source string

const (
	SourceGitHub      Source = "github"
	SourceHuggingFace Source = "huggingface"
	SourceReddit      Source = "reddit"
	SourceReplicate   Source = "replicate"
)

// AllSources 按展示顺序排列
var AllSources = []Source{SourceGitHub, SourceHuggingFace, SourceReddit, SourceReplicate}

// Item 统一采集后的基础结构。
// ProviderKey 保留上游原始标识（数字仓库 ID、hex _id、base36 帖子 ID、模型 URL），
// 稳定 ID 的推导统一放在 processor 里完成。
type Item struct {
	Source      Source
	ProviderKey string
	Username    string
	Name        string
	Stars       int
	Description string
	URL         string
	CreatedAt   time.Time
	RawData     map[string]any
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Item, error)
}
