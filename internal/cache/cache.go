package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"researcher-agent-go/internal/model"
)

// CachedProfile 缓存的合并后profile
type CachedProfile struct {
	NameKey   string                 `json:"name_key"` // 规范化的名字
	Record    model.ResearcherRecord `json:"record"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// Cache profile缓存接口
// 命中缓存的搜索跳过站点抓取
type Cache interface {
	Get(ctx context.Context, name string) (*CachedProfile, error)
	Set(ctx context.Context, name string, rec model.ResearcherRecord, ttl time.Duration) error
	Delete(ctx context.Context, name string) error
}

// NameKey 规范化名字作为缓存key
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// MemoryCache 内存缓存实现（默认，单机部署）
type MemoryCache struct {
	data map[string]*CachedProfile
	mu   sync.RWMutex
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*CachedProfile),
	}
}

// Get 获取缓存
func (c *MemoryCache) Get(ctx context.Context, name string) (*CachedProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.data[NameKey(name)]
	if !ok {
		return nil, nil
	}

	// 检查是否过期
	if time.Now().After(cached.ExpiresAt) {
		go c.Delete(context.Background(), name)
		return nil, nil
	}

	return cached, nil
}

// Set 设置缓存
func (c *MemoryCache) Set(ctx context.Context, name string, rec model.ResearcherRecord, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := NameKey(name)
	c.data[key] = &CachedProfile{
		NameKey:   key,
		Record:    rec,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete 删除缓存
func (c *MemoryCache) Delete(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, NameKey(name))
	return nil
}

// PostgresCache PostgreSQL缓存实现
type PostgresCache struct {
	db *sql.DB
}

// NewPostgresCache 创建PostgreSQL缓存
func NewPostgresCache(databaseURL string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCache{db: db}, nil
}

// Get 获取缓存
func (c *PostgresCache) Get(ctx context.Context, name string) (*CachedProfile, error) {
	query := `
	SELECT name_key, record, created_at, expires_at
	FROM researcher_cache
	WHERE name_key = $1 AND expires_at > NOW()
	`

	var cached CachedProfile
	var recordJSON []byte

	err := c.db.QueryRowContext(ctx, query, NameKey(name)).Scan(
		&cached.NameKey,
		&recordJSON,
		&cached.CreatedAt,
		&cached.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // 缓存不存在或已过期
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(recordJSON, &cached.Record); err != nil {
		return nil, err
	}

	return &cached, nil
}

// Set 设置缓存
func (c *PostgresCache) Set(ctx context.Context, name string, rec model.ResearcherRecord, ttl time.Duration) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO researcher_cache (name_key, record, created_at, expires_at)
	VALUES ($1, $2, NOW(), $3)
	ON CONFLICT (name_key)
	DO UPDATE SET record = $2, created_at = NOW(), expires_at = $3
	`

	_, err = c.db.ExecContext(ctx, query, NameKey(name), recordJSON, time.Now().Add(ttl))
	return err
}

// Delete 删除缓存
func (c *PostgresCache) Delete(ctx context.Context, name string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM researcher_cache WHERE name_key = $1`, NameKey(name))
	return err
}

// CleanExpired 清理过期缓存
func (c *PostgresCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM researcher_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close 关闭数据库连接
func (c *PostgresCache) Close() error {
	return c.db.Close()
}
