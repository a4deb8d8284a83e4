package dbtools

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultStmtCacheSize 每个连接默认保留的预编译语句数
const DefaultStmtCacheSize = 256

// StmtCache 缓存单个连接上的预编译语句，key 为 SQL 文本。
// 超过容量时关闭最久未用的语句。返回的语句在下一次 Get 之前有效，调用方需串行使用。
type StmtCache struct {
	conn *sql.Conn

	mu        sync.Mutex
	stmts     *lru.Cache
	evictErrs []error
}

// NewStmtCache size <= 0 时使用 DefaultStmtCacheSize
func NewStmtCache(conn *sql.Conn, size int) *StmtCache {
	if size <= 0 {
		size = DefaultStmtCacheSize
	}
	c := &StmtCache{conn: conn, stmts: lru.New(size)}
	c.stmts.OnEvicted = func(_ lru.Key, v any) {
		if err := v.(*sql.Stmt).Close(); err != nil {
			c.evictErrs = append(c.evictErrs, err)
		}
	}
	return c
}

// Get 返回缓存的语句，未命中时预编译并缓存
func (c *StmtCache) Get(ctx context.Context, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.stmts.Get(query); ok {
		return v.(*sql.Stmt), nil
	}
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.stmts.Add(query, stmt)
	return stmt, nil
}

// Len 缓存的语句数
func (c *StmtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stmts.Len()
}

// Cap 容量
func (c *StmtCache) Cap() int {
	return c.stmts.MaxEntries
}

// Close 关闭全部缓存语句，同时返回此前淘汰时的关闭错误
func (c *StmtCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stmts.Clear()
	err := errors.Join(c.evictErrs...)
	c.evictErrs = nil
	return err
}
