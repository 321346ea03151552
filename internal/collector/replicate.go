package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	replicateDefaultBaseURL = "https://api.replicate.com"
	replicateMaxItems       = 1000
	replicateMaxAgeDays     = 7
	replicateFetchTimeout   = 5 * time.Minute
)

type replicateModelPage struct {
	Next    string           `json:"next"`
	Results []replicateModel `json:"results"`
}

type replicateModel struct {
	URL           string `json:"url"`
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RunCount      int    `json:"run_count"`
	CreatedAt     string `json:"created_at"`
	LatestVersion *struct {
		ID        string `json:"id"`
		CreatedAt string `json:"created_at"`
	} `json:"latest_version"`
}

// ReplicateConfig 显式传入的客户端配置，避免进程级单例
type ReplicateConfig struct {
	APIToken string
	BaseURL  string
}

// ReplicateFetcher 翻页拉取模型列表。列表按最新版本时间倒序返回，
// 一旦遇到最新版本早于 7 天前的模型就整体停止翻页（依赖上游排序，见 Fetch）。
type ReplicateFetcher struct {
	cfg    ReplicateConfig
	Client *http.Client
}

func NewReplicateFetcher(cfg ReplicateConfig) *ReplicateFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = replicateDefaultBaseURL
	}
	return &ReplicateFetcher{cfg: cfg}
}

func (r *ReplicateFetcher) Name() string {
	return "replicate"
}

func (r *ReplicateFetcher) Fetch(ctx context.Context) ([]Item, error) {
	log.Println("fetch Replicate models...")

	ctx, cancel := context.WithTimeout(ctx, replicateFetchTimeout)
	defer cancel()

	header := http.Header{}
	if r.cfg.APIToken != "" {
		header.Set("Authorization", "Token "+r.cfg.APIToken)
	}

	oneWeekAgo := time.Now().AddDate(0, 0, -replicateMaxAgeDays)
	items := make([]Item, 0, replicateMaxItems)

	pageURL := r.cfg.BaseURL + "/v1/models"
outer:
	for pageURL != "" {
		if len(items) >= replicateMaxItems {
			break
		}

		page, err := getJSON[replicateModelPage](ctx, r.Client, pageURL, header)
		if err != nil {
			return nil, fmt.Errorf("replicate: list models: %w", err)
		}

		for _, model := range page.Results {
			if model.LatestVersion == nil || model.LatestVersion.ID == "" || model.RunCount <= 1 {
				continue
			}

			versionCreatedAt, err := time.Parse(time.RFC3339, model.LatestVersion.CreatedAt)
			if err != nil {
				continue
			}
			if versionCreatedAt.Before(oneWeekAgo) {
				// 上游按最新版本倒序返回，后面只会更旧，直接终止整个翻页
				break outer
			}

			createdAt, err := time.Parse(time.RFC3339, model.CreatedAt)
			if err != nil {
				// 部分响应不带模型创建时间，退化到最新版本时间以便窗口过滤可用
				createdAt = versionCreatedAt
			}

			items = append(items, Item{
				Source:      SourceReplicate,
				ProviderKey: model.URL,
				Username:    model.Owner,
				Name:        model.Name,
				Stars:       model.RunCount,
				Description: model.Description,
				URL:         model.URL,
				CreatedAt:   createdAt,
				RawData: map[string]any{
					"run_count":      model.RunCount,
					"latest_version": model.LatestVersion.ID,
				},
			})
		}

		pageURL = page.Next
	}

	if len(items) > replicateMaxItems {
		items = items[:replicateMaxItems]
	}

	log.Printf("replicate: fetched %d models", len(items))
	return items, nil
}
