package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/LJTian/HypeHub/internal/storage"
)

// FilterType 命名的时间窗口，作用于 created_at 和 inserted_at 两个下界
type FilterType string

const (
	FilterPastDay       FilterType = "past_day"
	FilterPastThreeDays FilterType = "past_three_days"
	FilterPastWeek      FilterType = "past_week"
)

// ParseFilter 非法取值一律退回默认的 past_week
func ParseFilter(s string) FilterType {
	switch FilterType(s) {
	case FilterPastDay, FilterPastThreeDays, FilterPastWeek:
		return FilterType(s)
	}
	return FilterPastWeek
}

// CutoffTime 窗口对应的时间下界
func CutoffTime(now time.Time, f FilterType) time.Time {
	switch f {
	case FilterPastDay:
		return now.AddDate(0, 0, -1)
	case FilterPastThreeDays:
		return now.AddDate(0, 0, -3)
	default:
		return now.AddDate(0, 0, -7)
	}
}

// 命中即丢弃的垃圾内容子串
var bannedStrings = []string{"nft", "crypto", "telegram", "clicker", "solana", "stealer"}

// IsValid 内容过滤：作者为空白、名称/描述含违禁词、
// 或名称同时含 stake 和 predict（组合式刷榜特征）的条目一律丢弃
func IsValid(p storage.Repository) bool {
	if strings.TrimSpace(p.Username) == "" {
		return false
	}

	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	for _, s := range bannedStrings {
		if strings.Contains(name, s) || strings.Contains(desc, s) {
			return false
		}
	}

	if strings.Contains(name, "stake") && strings.Contains(name, "predict") {
		return false
	}
	return true
}

// Score 把各源量纲不同的 stars 映射为可比较的热度：
// reddit 票数乘 0.3，replicate 运行数取 0.6 次幂，其余原样
func Score(p storage.Repository) float64 {
	switch p.Source {
	case "reddit":
		return float64(p.Stars) * 0.3
	case "replicate":
		return math.Pow(float64(p.Stars), 0.6)
	default:
		return float64(p.Stars)
	}
}

// Rank 对候选行做内容过滤后按热度降序排列。
// 使用稳定排序，同分条目保持输入顺序，保证结果确定。
func Rank(rows []storage.Repository) []storage.Repository {
	out := make([]storage.Repository, 0, len(rows))
	for _, r := range rows {
		if IsValid(r) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i]) > Score(out[j])
	})
	return out
}
