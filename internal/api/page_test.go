package api

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/LJTian/HypeHub/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSinceUnits(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "30 seconds", timeSince(now.Add(-30*time.Second), now))
	assert.Equal(t, "5 minutes", timeSince(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3 hours", timeSince(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days", timeSince(now.AddDate(0, 0, -2), now))
	assert.Equal(t, "2 months", timeSince(now.AddDate(0, -2, 0), now))
	assert.Equal(t, "1 years", timeSince(now.AddDate(-1, 0, -5), now))
}

func TestFormatLastUpdated(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2 hours ago", formatLastUpdated(now.Add(-2*time.Hour), true, nil, now))
	assert.Equal(t, "never", formatLastUpdated(time.Time{}, false, nil, now))

	// 查询失败也退化为 never，但必须留下日志痕迹
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	got := formatLastUpdated(time.Time{}, false, errors.New("db gone"), now)
	assert.Equal(t, "never", got)
	assert.Contains(t, buf.String(), "last modified error: db gone")
}

func TestPreparePostRow(t *testing.T) {
	repo := preparePostRow(storage.Repository{
		Source: "github", Username: "bob", Name: "hot-repo", Description: "a repo", Stars: 7, URL: "u",
	}, 0)
	assert.Equal(t, 1, repo.Index)
	assert.Equal(t, "bob/hot-repo", repo.DisplayName)
	assert.Equal(t, "a repo", repo.Description)
	assert.Equal(t, "⭐", repo.Icon)

	hf := preparePostRow(storage.Repository{Source: "huggingface", Username: "org", Name: "model"}, 1)
	assert.Equal(t, "org/model", hf.DisplayName)
	assert.Equal(t, "🤗", hf.Icon)

	// 论坛类条目展示标题，作者放进描述
	post := preparePostRow(storage.Repository{
		Source: "reddit", Username: "alice", Name: "Cool thread", Description: "/r/machinelearning",
	}, 2)
	assert.Equal(t, "Cool thread", post.DisplayName)
	assert.Equal(t, "alice on /r/machinelearning", post.Description)
	assert.Equal(t, "👽", post.Icon)
}

func TestRenderPageMarksActiveFilterAndCheckedSources(t *testing.T) {
	posts := []storage.Repository{
		{Source: "github", Username: "bob", Name: "repo", Description: "d", Stars: 3, URL: "https://github.com/bob/repo"},
	}

	html, err := renderPage(posts, "past_day", []string{"GitHub", "Reddit"}, "2 hours ago")
	require.NoError(t, err)

	assert.Contains(t, html, "Last updated 2 hours ago")
	assert.Contains(t, html, "bob/repo")
	// 勾选状态跟随传入的来源集合
	assert.Contains(t, html, `data-source="GitHub" checked`)
	assert.NotContains(t, html, `data-source="HuggingFace" checked`)

	// 只有 past_day 链接高亮
	assert.Contains(t, html, `underline" data-navigate>Past day`)
	assert.NotContains(t, html, `underline" data-navigate>Past week`)
}
