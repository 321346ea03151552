package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	redditDefaultBaseURL = "https://www.reddit.com"
	redditPerSubLimit    = 100
	redditFetchTimeout   = 60 * time.Second
)

// 固定关注的社区；flair 白名单为空表示该社区不做 flair 过滤
var (
	redditSubreddits   = []string{"machinelearning", "localllama", "StableDiffusion"}
	redditFlairFilters = map[string][]string{
		"StableDiffusion": {"News", "Resource | Update"},
	}
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditThread `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditThread struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Subreddit     string  `json:"subreddit"`
	Score         int     `json:"score"`
	CreatedUTC    float64 `json:"created_utc"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
}

// RedditFetcher 抓取各社区的 top-this-week 榜单；单个社区失败只影响自己
type RedditFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewRedditFetcher() *RedditFetcher {
	return &RedditFetcher{BaseURL: redditDefaultBaseURL}
}

func (r *RedditFetcher) Name() string {
	return "reddit"
}

func (r *RedditFetcher) Fetch(ctx context.Context) ([]Item, error) {
	log.Println("fetch Reddit posts...")

	ctx, cancel := context.WithTimeout(ctx, redditFetchTimeout)
	defer cancel()

	items := make([]Item, 0, len(redditSubreddits)*redditPerSubLimit)
	for _, sub := range redditSubreddits {
		url := fmt.Sprintf("%s/r/%s/top.json?sort=top&t=week&limit=%d", r.BaseURL, sub, redditPerSubLimit)
		listing, err := getJSON[redditListing](ctx, r.Client, url, nil)
		if err != nil {
			log.Printf("reddit: fetch r/%s error: %v", sub, err)
			continue
		}

		for _, child := range listing.Data.Children {
			thread := child.Data
			if thread.ID == "" {
				continue
			}

			if allow, ok := redditFlairFilters[thread.Subreddit]; ok && !contains(allow, thread.LinkFlairText) {
				continue
			}

			items = append(items, Item{
				Source:      SourceReddit,
				ProviderKey: thread.ID,
				Username:    thread.Author,
				Name:        thread.Title,
				Stars:       thread.Score,
				Description: "/r/" + thread.Subreddit,
				URL:         redditDefaultBaseURL + thread.Permalink,
				CreatedAt:   time.Unix(int64(thread.CreatedUTC), 0).UTC(),
				RawData: map[string]any{
					"subreddit": thread.Subreddit,
					"flair":     thread.LinkFlairText,
				},
			})
		}
	}

	log.Printf("reddit: fetched %d posts", len(items))
	return items, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
