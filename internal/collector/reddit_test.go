package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditFetchAppliesFlairFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/machinelearning/top.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "top", r.URL.Query().Get("sort"))
		assert.Equal(t, "week", r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"1a2b3c","title":"Paper thread","author":"alice","subreddit":"machinelearning",
			 "score":321,"created_utc":1750000000,"permalink":"/r/machinelearning/comments/1a2b3c/paper/","link_flair_text":"Research"}}
		]}}`))
	})
	mux.HandleFunc("/r/StableDiffusion/top.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"aaa111","title":"New release","author":"bob","subreddit":"StableDiffusion",
			 "score":50,"created_utc":1750000000,"permalink":"/r/StableDiffusion/comments/aaa111/rel/","link_flair_text":"News"}},
			{"data":{"id":"bbb222","title":"Funny picture","author":"carol","subreddit":"StableDiffusion",
			 "score":9000,"created_utc":1750000000,"permalink":"/r/StableDiffusion/comments/bbb222/meme/","link_flair_text":"Memes"}}
		]}}`))
	})
	// localllama 故意不注册：单个社区失败只记日志，不影响其它社区

	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &RedditFetcher{BaseURL: srv.URL, Client: srv.Client()}
	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	ml := items[0]
	assert.Equal(t, SourceReddit, ml.Source)
	assert.Equal(t, "1a2b3c", ml.ProviderKey)
	assert.Equal(t, "alice", ml.Username)
	assert.Equal(t, "Paper thread", ml.Name)
	assert.Equal(t, 321, ml.Stars)
	assert.Equal(t, "/r/machinelearning", ml.Description)
	assert.Equal(t, "https://www.reddit.com/r/machinelearning/comments/1a2b3c/paper/", ml.URL)

	// machinelearning 没有配置 flair 白名单，任何 flair 都保留；
	// StableDiffusion 只保留白名单内的 News，Memes 被丢弃
	sd := items[1]
	assert.Equal(t, "aaa111", sd.ProviderKey)
	assert.Equal(t, "News", sd.RawData["flair"])
}
