package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LJTian/HypeHub/internal/common"
)

const (
	userAgent        = "hype-news-aggregator"
	maxResponseBytes = 8 << 20 // 8MB，防止超大响应拖垮内存
	clientTimeout    = 30 * time.Second
)

var defaultClient = &http.Client{Timeout: clientTimeout}

// getJSON 发起带 UA 的 GET 并解析 JSON，失败时做有限次指数退避重试（仅幂等读取）
func getJSON[T any](ctx context.Context, client *http.Client, url string, header http.Header) (T, error) {
	var result T
	if client == nil {
		client = defaultClient
	}

	err := common.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var decoded T
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
			return err
		}
		result = decoded
		return nil
	}, common.WithMaxRetries(2), common.WithInitialDelay(500*time.Millisecond))

	return result, err
}

// getText 发起 GET 并返回文本内容（用于拉取 README 原文），不做重试
func getText(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = defaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
