package storage

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB 只生成 SQL 不执行，不需要真实的 PostgreSQL
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		postgres.New(postgres.Config{DSN: "host=localhost user=hypehub dbname=hypehub"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true},
	)
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestUpsertStatementTargetsCompositeKeyAndMutableColumns(t *testing.T) {
	db := newDryRunDB(t)

	row := &Repository{
		ID: "42", Source: "github", Username: "bob", Name: "repo",
		Description: "d", Stars: 7, URL: "u",
		CreatedAt: time.Now(), InsertedAt: time.Now(),
	}
	stmt := db.Clauses(upsertClause()).Create(row).Statement
	sql := stmt.SQL.String()

	// 冲突目标是复合主键：同一 (id, source) 重复写入只会更新，不会产生第二行
	if !strings.Contains(sql, `ON CONFLICT ("id","source") DO UPDATE SET`) {
		t.Fatalf("upsert statement missing composite conflict target: %s", sql)
	}

	// 所有可变列都必须被 excluded 值覆盖，漏一列幂等刷新就会悄悄失效
	for _, col := range upsertColumns {
		assign := fmt.Sprintf(`"%s"="excluded"."%s"`, col, col)
		if !strings.Contains(sql, assign) {
			t.Fatalf("upsert statement missing assignment %s: %s", assign, sql)
		}
	}

	// 主键列不允许出现在更新集合里
	for _, col := range []string{"id", "source"} {
		assign := fmt.Sprintf(`"%s"="excluded"."%s"`, col, col)
		if strings.Contains(sql, assign) {
			t.Fatalf("upsert statement must not reassign key column %s: %s", col, sql)
		}
	}
}

func TestToValidUTF8ReplacesBadBytes(t *testing.T) {
	bad := string([]byte{0x48, 0x69, 0xff, 0xfe})
	got := toValidUTF8(bad)
	if !strings.HasPrefix(got, "Hi") {
		t.Fatalf("toValidUTF8 lost valid prefix: %q", got)
	}
	if strings.ContainsRune(got, 0xff) {
		t.Fatalf("toValidUTF8 kept invalid byte: %q", got)
	}

	if got := toValidUTF8("纯中文 ok"); got != "纯中文 ok" {
		t.Fatalf("toValidUTF8 changed valid input: %q", got)
	}
}

func TestTruncateRunesDB(t *testing.T) {
	// 按 rune 截断，避免把多字节字符劈开
	s := strings.Repeat("好", 700)
	got := truncateRunesDB(s, 600)
	if len([]rune(got)) != 600 {
		t.Fatalf("truncateRunesDB length = %d, want 600", len([]rune(got)))
	}

	if got := truncateRunesDB("short", 600); got != "short" {
		t.Fatalf("truncateRunesDB should keep short input: %q", got)
	}
	if got := truncateRunesDB("anything", 0); got != "" {
		t.Fatalf("truncateRunesDB with limit 0 should be empty: %q", got)
	}
}
