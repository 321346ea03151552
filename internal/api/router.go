package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/HypeHub/internal/collector"
	"github.com/LJTian/HypeHub/internal/ranking"
	"github.com/LJTian/HypeHub/internal/scheduler"
	"github.com/LJTian/HypeHub/internal/storage"
	"github.com/gin-gonic/gin"
)

type Server struct {
	store *storage.Store
	sched *scheduler.Scheduler
}

func NewServer(store *storage.Store, sched *scheduler.Scheduler) *Server {
	return &Server{store: store, sched: sched}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/", s.index)

	api := r.Group("/api")
	{
		api.GET("/posts", s.listPosts)
		api.GET("/last-updated", s.lastUpdated)
		api.POST("/update", s.update)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseSources 把逗号分隔的来源参数统一成小写集合，空参数退回全部来源
func parseSources(param string) []string {
	if param == "" {
		sources := make([]string, 0, len(collector.AllSources))
		for _, s := range collector.AllSources {
			sources = append(sources, string(s))
		}
		return sources
	}
	parts := strings.Split(param, ",")
	sources := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			sources = append(sources, p)
		}
	}
	return sources
}

func (s *Server) listPosts(c *gin.Context) {
	filter := ranking.ParseFilter(c.DefaultQuery("filter", string(ranking.FilterPastWeek)))
	sources := parseSources(c.Query("sources"))

	cutoff := ranking.CutoffTime(time.Now(), filter)
	rows, err := s.store.ListRecent(string(filter), cutoff, sources)
	if err != nil {
		// 存储不可用属于硬错误，明确报错而不是悄悄返回旧数据
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    ranking.Rank(rows),
	})
}

func (s *Server) lastUpdated(c *gin.Context) {
	t, ok, err := s.store.LastModified()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	lastUpdated := ""
	if ok {
		lastUpdated = t.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    gin.H{"lastUpdated": lastUpdated},
	})
}

// update 手动触发一轮采集。重复触发是安全的：两轮并发 upsert 后写覆盖先写。
func (s *Server) update(c *gin.Context) {
	if err := s.sched.RunOnce(); err != nil {
		log.Printf("api: manual update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "update_failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
	})
}

func (s *Server) index(c *gin.Context) {
	filterParam := c.Query("filter")
	filter := ranking.ParseFilter(filterParam)

	sourcesParam := c.Query("sources")
	if sourcesParam == "" {
		sourcesParam = strings.Join(displaySources, ",")
	}
	displayTokens := strings.Split(sourcesParam, ",")
	sources := parseSources(sourcesParam)

	cutoff := ranking.CutoffTime(time.Now(), filter)
	rows, err := s.store.ListRecent(string(filter), cutoff, sources)
	if err != nil {
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	ranked := ranking.Rank(rows)

	t, ok, lmErr := s.store.LastModified()
	lastUpdated := formatLastUpdated(t, ok, lmErr, time.Now())

	html, err := renderPage(ranked, string(filter), displayTokens, lastUpdated)
	if err != nil {
		log.Printf("api: render page error: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
