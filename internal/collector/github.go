package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/LJTian/HypeHub/internal/common"
	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

const (
	githubSearchPages   = 5
	githubPerPage       = 100
	githubFetchTimeout  = 60 * time.Second
	githubDefaultWindow = 7 // 只搜索最近一周创建的仓库
)

// GitHubFetcher 通过 GitHub Search API 拉取近一周新建并按 star 排序的仓库。
// 固定扫 5 页（500 条），不做本地过滤。
type GitHubFetcher struct {
	client   *github.Client
	language string
}

func NewGitHubFetcher(token, language string) *GitHubFetcher {
	var client *github.Client
	if token == "" {
		client = github.NewClient(nil)
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}
	if language == "" {
		language = "python"
	}
	return &GitHubFetcher{client: client, language: language}
}

// NewGitHubFetcherWithClient 供测试注入指向 httptest 的 client
func NewGitHubFetcherWithClient(client *github.Client, language string) *GitHubFetcher {
	return &GitHubFetcher{client: client, language: language}
}

func (g *GitHubFetcher) Name() string {
	return "github"
}

func (g *GitHubFetcher) Fetch(ctx context.Context) ([]Item, error) {
	log.Println("fetch GitHub repos...")

	ctx, cancel := context.WithTimeout(ctx, githubFetchTimeout)
	defer cancel()

	since := time.Now().AddDate(0, 0, -githubDefaultWindow).Format("2006-01-02")
	query := fmt.Sprintf("language:%s created:>%s", g.language, since)

	items := make([]Item, 0, githubSearchPages*githubPerPage)
	for page := 1; page <= githubSearchPages; page++ {
		opts := &github.SearchOptions{
			Sort:  "stars",
			Order: "desc",
			ListOptions: github.ListOptions{
				PerPage: githubPerPage,
				Page:    page,
			},
		}

		var result *github.RepositoriesSearchResult
		err := common.Do(ctx, func() error {
			var apiErr error
			result, _, apiErr = g.client.Search.Repositories(ctx, query, opts)
			return apiErr
		}, common.WithMaxRetries(2), common.WithInitialDelay(time.Second))
		if err != nil {
			return nil, fmt.Errorf("github: search page %d: %w", page, err)
		}

		for _, repo := range result.Repositories {
			if repo.GetID() == 0 {
				continue
			}
			items = append(items, Item{
				Source:      SourceGitHub,
				ProviderKey: fmt.Sprintf("%d", repo.GetID()),
				Username:    repo.GetOwner().GetLogin(),
				Name:        repo.GetName(),
				Stars:       repo.GetStargazersCount(),
				Description: repo.GetDescription(),
				URL:         repo.GetHTMLURL(),
				CreatedAt:   repo.GetCreatedAt().Time,
				RawData: map[string]any{
					"language": repo.GetLanguage(),
					"forks":    repo.GetForksCount(),
				},
			})
		}
	}

	log.Printf("github: fetched %d repos", len(items))
	return items, nil
}
