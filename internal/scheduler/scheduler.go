package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/LJTian/HypeHub/internal/collector"
	"github.com/LJTian/HypeHub/internal/processor"
	"github.com/LJTian/HypeHub/internal/storage"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron      *cron.Cron
	fetchers  []collector.Fetcher
	processor *processor.SimpleProcessor
	store     *storage.Store
}

func New(spec string, fetchers []collector.Fetcher, p *processor.SimpleProcessor, store *storage.Store) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:      c,
		fetchers:  fetchers,
		processor: p,
		store:     store,
	}

	if _, err := c.AddFunc(spec, func() { _ = s.RunOnce() }); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与启动期的首批请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go func() { _ = s.RunOnce() }()
	})
}

// RunOnce 执行一轮完整的 采集 -> 归一化 -> 幂等入库。
// 四个数据源并发拉取，单源失败不影响其它源；已提交的写入不回滚。
// 返回本轮遇到的第一个错误，供手动触发接口上报成败。
func (s *Scheduler) RunOnce() error {
	log.Println("start collect job...")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, f := range s.fetchers {
		fetcher := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fetcher.Name()
			log.Printf("fetch from %s...", name)

			items, err := fetcher.Fetch(context.Background())
			if err != nil {
				log.Printf("fetch %s error: %v", name, err)
				record(err)
				return
			}
			if len(items) == 0 {
				log.Printf("fetch %s got 0 items", name)
				return
			}

			posts := s.processor.Process(items)
			if len(posts) == 0 {
				return
			}
			if err := s.store.SaveBatch(posts); err != nil {
				log.Printf("save %s batch error: %v", name, err)
				record(err)
				return
			}
			// 条数 = 本轮解析到的数量（已存在的行会被覆盖更新）
			log.Printf("%s done, fetched=%d saved=%d items", name, len(items), len(posts))
		}()
	}

	wg.Wait()
	log.Println("collect job done (all sources)")
	return firstErr
}
