package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReadmeDescription(t *testing.T) {
	tests := []struct {
		name   string
		readme string
		want   string
	}{
		{
			name:   "优先 Model Description 标题",
			readme: "# My Model\n\nintro text\n\n## Model Description\nThis is a great model.\n\n## Usage\nrun it",
			want:   "This is a great model.",
		},
		{
			name:   "Overview 标题同样命中",
			readme: "## Overview\nDoes one thing well.\n\n## Details\nmore",
			want:   "Does one thing well.",
		},
		{
			name:   "退化到第一个标题后的段落",
			readme: "# Title\nFirst paragraph here.\n# Next\nother",
			want:   "First paragraph here.",
		},
		{
			name:   "没有标题返回空串",
			readme: "just some text without headings",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractReadmeDescription(tt.readme))
		})
	}
}

func TestHuggingFaceFetchFiltersAndDescribes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"507f1f77bcf86cd799439011","id":"org/model-a","author":"org","likes":5,"downloads":10,
			 "lastModified":"2025-06-01T00:00:00.000Z","siblings":[{"rfilename":"README.md"}]},
			{"_id":"507f1f77bcf86cd799439012","id":"org/unliked","author":"org","likes":1,"downloads":10,"lastModified":"2025-06-01T00:00:00.000Z"},
			{"_id":"507f1f77bcf86cd799439013","id":"org/unloved","author":"org","likes":5,"downloads":1,"lastModified":"2025-06-01T00:00:00.000Z"},
			{"_id":"507f1f77bcf86cd799439014","id":"orphan/model","author":"","likes":5,"downloads":10,"lastModified":"2025-06-01T00:00:00.000Z"}
		]`))
	})
	mux.HandleFunc("/org/model-a/raw/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("## Model Description\nA great model.\n\n## Usage\nstuff"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &HuggingFaceFetcher{BaseURL: srv.URL, Client: srv.Client()}
	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, SourceHuggingFace, got.Source)
	assert.Equal(t, "507f1f77bcf86cd799439011", got.ProviderKey)
	assert.Equal(t, "org", got.Username)
	assert.Equal(t, "model-a", got.Name)
	assert.Equal(t, 5, got.Stars)
	assert.Equal(t, "A great model.", got.Description)
	assert.Equal(t, "https://huggingface.co/org/model-a", got.URL)
	assert.False(t, got.CreatedAt.IsZero())
}
