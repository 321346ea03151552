package processor

import (
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/HypeHub/internal/collector"
)

// Post 是写入存储层前的统一结构
type Post struct {
	ID          string
	Source      collector.Source
	Username    string
	Name        string
	Stars       int
	Description string
	URL         string
	CreatedAt   time.Time
	RawData     map[string]any
}

// SimpleProcessor 负责稳定 ID 推导、基础清洗与批内去重。
// ID 推导按数据源各有一套规则，必须保证同一个上游实体在每轮采集中得到相同 ID。
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

func (p *SimpleProcessor) Process(items []collector.Item) []Post {
	out := make([]Post, 0, len(items))
	seen := make(map[string]struct{})

	for _, it := range items {
		id, ok := deriveID(it.Source, it.ProviderKey)
		if !ok {
			log.Printf("processor: skip %s item with bad provider key %q", it.Source, it.ProviderKey)
			continue
		}

		key := id + "|" + string(it.Source)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, Post{
			ID:          id,
			Source:      it.Source,
			Username:    strings.TrimSpace(it.Username),
			Name:        strings.TrimSpace(it.Name),
			Stars:       it.Stars,
			Description: it.Description,
			URL:         it.URL,
			CreatedAt:   it.CreatedAt,
			RawData:     it.RawData,
		})
	}

	return out
}

// deriveID 各数据源的 ID 推导规则：
//   - github: 上游数字仓库 ID 原样使用
//   - huggingface: 内部 _id 跳过前 10 个字符后按 16 进制解析
//   - reddit: base36 帖子 ID 用大整数解析成十进制（ID 较长，不能用 int64）
//   - replicate: 模型 URL 的 31 倍滚动哈希，按 int32 回绕
func deriveID(source collector.Source, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}

	switch source {
	case collector.SourceGitHub:
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			return "", false
		}
		return key, true

	case collector.SourceHuggingFace:
		if len(key) <= 10 {
			return "", false
		}
		n, err := strconv.ParseUint(key[10:], 16, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatUint(n, 10), true

	case collector.SourceReddit:
		n, ok := new(big.Int).SetString(key, 36)
		if !ok {
			return "", false
		}
		return n.String(), true

	case collector.SourceReplicate:
		return strconv.FormatInt(int64(hashStringToInt(key)), 10), true
	}

	return "", false
}

// hashStringToInt 经典的乘 31 滚动哈希，按 32 位有符号整数回绕
func hashStringToInt(s string) int32 {
	var hash int32
	for _, r := range s {
		hash = hash*31 + int32(r)
	}
	return hash
}
