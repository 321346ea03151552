package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LJTian/HypeHub/internal/processor"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 一条归一化后的聚合条目，主键是 (id, source)。
// CreatedAt 来自上游，InsertedAt 是本服务每次写入时刷新的服务端时钟，
// 两者共同参与时间窗口过滤。行一旦写入不会被删除。
type Repository struct {
	ID          string            `gorm:"primaryKey;size:64" json:"id"`
	Source      string            `gorm:"primaryKey;size:32;index" json:"source"`
	Username    string            `gorm:"size:256" json:"username"`
	Name        string            `gorm:"size:512" json:"name"`
	Description string            `gorm:"size:600" json:"description"`
	Stars       int               `gorm:"index" json:"stars"`
	URL         string            `gorm:"size:1024" json:"url"`
	CreatedAt   time.Time         `gorm:"index;autoCreateTime:false" json:"created_at"`
	InsertedAt  time.Time         `gorm:"index" json:"inserted_at"`
	RawData     datatypes.JSONMap `gorm:"type:jsonb" json:"rawData,omitempty"`
}

func (Repository) TableName() string {
	return "repositories"
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Repository{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断，防止上游异常长文本超出字段长度导致入库失败
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// 冲突时需要整体覆盖的可变列。漏掉任何一列都会让对应字段停留在首次写入的旧值
var upsertColumns = []string{
	"username", "name", "description", "stars", "url", "created_at", "inserted_at", "raw_data",
}

// upsertClause 冲突目标必须是复合主键 (id, source)，否则同一上游实体会落成多行
func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}
}

// SaveBatch 幂等保存一批条目：按 (id, source) 冲突时覆盖所有可变字段并刷新 inserted_at。
// 单条写入失败只记录日志，不影响同批其它条目；返回第一个遇到的错误供触发方上报。
func (s *Store) SaveBatch(posts []processor.Post) error {
	var firstErr error
	for _, p := range posts {
		row := &Repository{
			ID:          p.ID,
			Source:      string(p.Source),
			Username:    toValidUTF8(p.Username),
			Name:        toValidUTF8(truncateRunesDB(p.Name, 512)),
			Description: toValidUTF8(truncateRunesDB(p.Description, 600)),
			Stars:       p.Stars,
			URL:         p.URL,
			CreatedAt:   p.CreatedAt,
			InsertedAt:  time.Now().UTC(),
			RawData:     datatypes.JSONMap(p.RawData),
		}

		err := s.DB.Clauses(upsertClause()).Create(row).Error
		if err != nil {
			log.Printf("storage: upsert %s/%s error: %v", row.Source, row.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ListRecent 返回窗口内的候选行：源集合匹配、created_at 与 inserted_at 均晚于 cutoff，
// 按 stars 降序最多 500 行。filter 仅用于拼缓存 key；结果用 Redis 缓存 5 分钟。
func (s *Store) ListRecent(filter string, cutoff time.Time, sources []string) ([]Repository, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("posts:list:%s:%s", filter, strings.Join(sources, ","))

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Repository
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Repository
	err := s.DB.Model(&Repository{}).
		Where("source IN ?", sources).
		Where("created_at > ?", cutoff).
		Where("inserted_at > ?", cutoff).
		Order("stars DESC").
		Limit(500).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	const listCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}

// LastModified 返回全表最大的 inserted_at，用于页面上的 "updated N ago" 展示
func (s *Store) LastModified() (time.Time, bool, error) {
	var row struct {
		LastUpdated *time.Time
	}
	err := s.DB.Raw(`SELECT MAX(inserted_at) AS last_updated FROM repositories`).Scan(&row).Error
	if err != nil {
		return time.Time{}, false, err
	}
	if row.LastUpdated == nil {
		return time.Time{}, false, nil
	}
	return *row.LastUpdated, true, nil
}
