package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	hfDefaultBaseURL    = "https://huggingface.co"
	hfListLimit         = 5000
	hfDescriptionLimit  = 200
	hfFetchTimeout      = 10 * time.Minute
	hfReadmeConcurrency = 8
)

// 优先取 "Model Description" / "Overview" 标题后的段落，退化为第一个标题后的段落
var (
	hfModelDescRe    = regexp.MustCompile(`(?:^|\n)##\s*(?:Model [Dd]escription|Overview:?)[\r\n]+([\s\S]*?)(?:[\r\n]+\s*#|$)`)
	hfFirstHeadingRe = regexp.MustCompile(`(?:^|\n)##?\s*[^#\n]+[\r\n]+([\s\S]*?)(?:[\r\n]+\s*#|$)`)
)

type hfModel struct {
	MongoID      string `json:"_id"`
	ID           string `json:"id"`
	Author       string `json:"author"`
	Likes        int    `json:"likes"`
	Downloads    int    `json:"downloads"`
	LastModified string `json:"lastModified"`
	Siblings     []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
}

// HuggingFaceFetcher 扫描 HuggingFace 模型库（按最近修改倒序，最多 5000 条），
// 跳过 likes<=1、downloads<=1 或缺少作者的模型，并从 README 里抽取介绍文案
type HuggingFaceFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewHuggingFaceFetcher() *HuggingFaceFetcher {
	return &HuggingFaceFetcher{BaseURL: hfDefaultBaseURL}
}

func (h *HuggingFaceFetcher) Name() string {
	return "huggingface"
}

func (h *HuggingFaceFetcher) Fetch(ctx context.Context) ([]Item, error) {
	log.Println("fetch HuggingFace models...")

	ctx, cancel := context.WithTimeout(ctx, hfFetchTimeout)
	defer cancel()

	listURL := fmt.Sprintf("%s/api/models?full=true&limit=%d&sort=lastModified&direction=-1", h.BaseURL, hfListLimit)
	models, err := getJSON[[]hfModel](ctx, h.Client, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("huggingface: list models: %w", err)
	}

	kept := make([]hfModel, 0, len(models))
	for _, m := range models {
		if m.Likes <= 1 || m.Downloads <= 1 || m.Author == "" {
			continue
		}
		kept = append(kept, m)
	}

	// README 拉取彼此独立，并发抓取但保持原有顺序
	descriptions := make([]string, len(kept))
	var wg sync.WaitGroup
	sem := make(chan struct{}, hfReadmeConcurrency)
	for i, m := range kept {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, m hfModel) {
			defer wg.Done()
			defer func() { <-sem }()
			descriptions[i] = h.fetchDescription(ctx, m)
		}(i, m)
	}
	wg.Wait()

	items := make([]Item, 0, len(kept))
	for i, m := range kept {
		name := m.ID
		if idx := strings.Index(m.ID, "/"); idx != -1 {
			name = m.ID[idx+1:]
		}

		createdAt, err := time.Parse(time.RFC3339, m.LastModified)
		if err != nil {
			createdAt = time.Time{}
		}

		items = append(items, Item{
			Source:      SourceHuggingFace,
			ProviderKey: m.MongoID,
			Username:    m.Author,
			Name:        name,
			Stars:       m.Likes,
			Description: TruncateWithoutBreakingWords(descriptions[i], hfDescriptionLimit),
			// 入库的是对外的规范链接，故意不跟随 BaseURL（BaseURL 只服务于测试桩）
			URL:       fmt.Sprintf("%s/%s", hfDefaultBaseURL, m.ID),
			CreatedAt:   createdAt,
			RawData: map[string]any{
				"downloads": m.Downloads,
			},
		})
	}

	log.Printf("huggingface: fetched %d models", len(items))
	return items, nil
}

// fetchDescription 从模型 README 原文抽取介绍；任何失败都只返回空串
func (h *HuggingFaceFetcher) fetchDescription(ctx context.Context, m hfModel) string {
	readmeFilename := ""
	for _, s := range m.Siblings {
		if strings.ToLower(s.Rfilename) == "readme.md" {
			readmeFilename = s.Rfilename
			break
		}
	}
	if readmeFilename == "" {
		return ""
	}

	readme, err := getText(ctx, h.Client, fmt.Sprintf("%s/%s/raw/main/%s", h.BaseURL, m.ID, readmeFilename))
	if err != nil {
		return ""
	}
	return extractReadmeDescription(readme)
}

func extractReadmeDescription(readme string) string {
	if m := hfModelDescRe.FindStringSubmatch(readme); len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	if m := hfFirstHeadingRe.FindStringSubmatch(readme); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
