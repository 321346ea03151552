package api

import (
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/LJTian/HypeHub/internal/storage"
)

// 页面上的来源勾选框按这个顺序展示
var displaySources = []string{"GitHub", "Replicate", "HuggingFace", "Reddit"}

type postRow struct {
	Index       int
	DisplayName string
	Icon        string
	Description string
	URL         string
	Stars       int
}

type filterLink struct {
	Key    string
	Label  string
	Active bool
	First  bool
}

type sourceBox struct {
	Name    string
	Checked bool
}

type pageData struct {
	Filter       string
	SourcesParam string
	LastUpdated  string
	Posts        []postRow
	FilterLinks  []filterLink
	Sources      []sourceBox
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Hype - ML/AI News</title>
	<script src="https://cdn.tailwindcss.com"></script>
	<style>
		body { font-family: Verdana, Geneva, sans-serif; }
	</style>
</head>
<body class="container mx-auto overflow-x-hidden">
	<main class="md:px-4">
		<div class="flex justify-between items-center bg-red-600 px-4 py-2">
			<a href="/" class="text-white font-bold hover:underline text-md rotate-[-5deg]">Hype</a>
			<div class="flex items-center ml-auto">
				{{- range .FilterLinks}}
				{{if not .First}}<span class="text-white sm:mx-4 mx-1">|</span>{{end -}}
				<a href="/?filter={{.Key}}&sources={{$.SourcesParam}}" class="text-[0.9rem] text-white {{if .Active}}underline{{end}}" data-navigate>{{.Label}}</a>
				{{- end}}
			</div>
		</div>

		<div class="text-xs flex justify-between items-center bg-[#f6f6ef] px-4 py-1">
			<div class="flex items-center space-x-4">
				{{- range .Sources}}
				<label class="inline-flex items-center cursor-pointer">
					<input type="checkbox" class="form-checkbox accent-gray-600" data-source="{{.Name}}" {{if .Checked}}checked{{end}}>
					<span class="ml-2">{{.Name}}</span>
				</label>
				{{- end}}
			</div>
			<span class="text-gray-500">Last updated {{.LastUpdated}}</span>
		</div>

		<ul class="bg-gray-100 relative">
			{{- range .Posts}}
			<li class="flex py-1 bg-[#f6f6ef]">
				<span class="w-8 text-right mr-2 text-gray-600">{{.Index}}.</span>
				<div class="flex flex-col w-full">
					<div class="flex items-center">
						<a href="{{.URL}}" target="_blank" rel="noopener noreferrer" class="text-black text-[0.9rem]">{{.DisplayName}}</a>
						<span class="text-gray-600 text-xs ml-2">{{.Icon}}</span>
						<span class="text-gray-600 text-xs ml-1">{{.Stars}}</span>
					</div>
					<p class="text-gray-600 text-xs mt-0.5">{{.Description}}</p>
				</div>
			</li>
			{{- end}}
		</ul>
	</main>

	<footer class="flex justify-center items-center py-4 border-t-2 border-red-600 md:mx-4">
		<span class="text-gray-600 text-sm">Trending from GitHub, HuggingFace, Reddit and Replicate</span>
	</footer>

	<script>
		const currentFilter = "{{.Filter}}";

		function getSelectedSources() {
			return [...document.querySelectorAll('[data-source]:checked')].map(c => c.dataset.source);
		}

		function buildUrl(filter, sources) {
			return '/?filter=' + filter + '&sources=' + sources.join(',');
		}

		async function navigate(url) {
			document.querySelectorAll('[data-source]').forEach(cb => {
				cb.disabled = true;
				cb.parentElement.style.opacity = '0.5';
			});
			history.pushState(null, '', url);
			const res = await fetch(url);
			const html = await res.text();
			const doc = new DOMParser().parseFromString(html, 'text/html');
			document.body.innerHTML = doc.body.innerHTML;
			attachListeners();
		}

		function attachListeners() {
			document.querySelectorAll('[data-source]').forEach(cb => {
				cb.addEventListener('change', () => {
					navigate(buildUrl(currentFilter, getSelectedSources()));
				});
			});
			document.querySelectorAll('[data-navigate]').forEach(a => {
				a.addEventListener('click', (e) => {
					e.preventDefault();
					navigate(a.href);
				});
			});
		}

		window.addEventListener('popstate', () => navigate(location.href));
		attachListeners();
	</script>
</body>
</html>`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// preparePostRow 把仓库类来源展示成 "作者/名称 + 简介"，论坛类展示成 "标题 + 作者 on /r/社区"
func preparePostRow(p storage.Repository, index int) postRow {
	isRepo := p.Source == "huggingface" || p.Source == "github" || p.Source == "replicate"

	displayName := p.Name
	description := fmt.Sprintf("%s on %s", p.Username, p.Description)
	if isRepo {
		displayName = p.Username + "/" + p.Name
		description = p.Description
	}

	icon := "⭐"
	switch p.Source {
	case "huggingface":
		icon = "🤗"
	case "reddit":
		icon = "👽"
	case "replicate":
		icon = "®️"
	}

	return postRow{
		Index:       index + 1,
		DisplayName: displayName,
		Icon:        icon,
		Description: description,
		URL:         p.URL,
		Stars:       p.Stars,
	}
}

func renderPage(posts []storage.Repository, filter string, displayTokens []string, lastUpdated string) (string, error) {
	filterLinks := []filterLink{
		{Key: "past_day", Label: "Past day"},
		{Key: "past_three_days", Label: "Past three days"},
		{Key: "past_week", Label: "Past week"},
	}
	for i := range filterLinks {
		filterLinks[i].Active = filter == filterLinks[i].Key
		filterLinks[i].First = i == 0
	}

	checked := make(map[string]bool, len(displayTokens))
	for _, tok := range displayTokens {
		checked[strings.ToLower(strings.TrimSpace(tok))] = true
	}

	sources := make([]sourceBox, 0, len(displaySources))
	for _, name := range displaySources {
		sources = append(sources, sourceBox{Name: name, Checked: checked[strings.ToLower(name)]})
	}

	rows := make([]postRow, 0, len(posts))
	for i, p := range posts {
		rows = append(rows, preparePostRow(p, i))
	}

	data := pageData{
		Filter:       filter,
		SourcesParam: strings.Join(displayTokens, ","),
		LastUpdated:  lastUpdated,
		Posts:        rows,
		FilterLinks:  filterLinks,
		Sources:      sources,
	}

	var sb strings.Builder
	if err := pageTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatLastUpdated 把最近写入时间换算成页面文案。
// 查询失败时记日志后退化为 never，避免存储故障和空表在页面上无法区分却毫无痕迹
func formatLastUpdated(t time.Time, ok bool, err error, now time.Time) string {
	if err != nil {
		log.Printf("api: last modified error: %v", err)
		return "never"
	}
	if !ok {
		return "never"
	}
	return timeSince(t, now) + " ago"
}

// timeSince 输出 "2 days" 这类最粗粒度的时间差文案
func timeSince(t, now time.Time) string {
	seconds := int64(now.Sub(t).Seconds())

	intervals := []struct {
		secs int64
		unit string
	}{
		{31536000, "years"},
		{2592000, "months"},
		{86400, "days"},
		{3600, "hours"},
		{60, "minutes"},
	}
	for _, iv := range intervals {
		if seconds/iv.secs >= 1 {
			return fmt.Sprintf("%d %s", seconds/iv.secs, iv.unit)
		}
	}
	return fmt.Sprintf("%d seconds", seconds)
}
