package main

import (
	"log"
	"os"

	"github.com/LJTian/HypeHub/internal/collector"
	"github.com/LJTian/HypeHub/internal/config"
	"github.com/LJTian/HypeHub/internal/processor"
	"github.com/LJTian/HypeHub/internal/scheduler"
	"github.com/LJTian/HypeHub/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 注册采集器（与 cmd/api 保持一致）
	fetchers := []collector.Fetcher{
		collector.NewHuggingFaceFetcher(),
		collector.NewGitHubFetcher(cfg.GitHubToken, cfg.GitHubLanguage),
		collector.NewRedditFetcher(),
		collector.NewReplicateFetcher(collector.ReplicateConfig{APIToken: cfg.ReplicateAPIToken}),
	}

	p := processor.NewSimpleProcessor()
	s, err := scheduler.New(cfg.CronSpec, fetchers, p, store)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	// 只执行一轮采集任务后退出
	if err := s.RunOnce(); err != nil {
		log.Printf("collect finished with error: %v", err)
		os.Exit(1)
	}
}
