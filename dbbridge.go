// Package dbbridge 统一 SQLite、MySQL、PostgreSQL 的连接与查询
package dbbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Kaguya154/dbbridge/config"
	"github.com/Kaguya154/dbbridge/types"

	"golang.org/x/sync/errgroup"
)

// 命名连接注册表
var (
	registeredMu sync.RWMutex
	registered   = make(map[string]*Manager)
)

// Register 注册命名连接
func Register(name string, m *Manager) error {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	if name == "" {
		return fmt.Errorf("connection name cannot be empty")
	}
	if m == nil {
		return fmt.Errorf("manager cannot be nil")
	}
	if _, exists := registered[name]; exists {
		return fmt.Errorf("connection %s already registered", name)
	}
	registered[name] = m
	return nil
}

// Get 获取注册的连接
func Get(name string) (*Manager, error) {
	registeredMu.RLock()
	defer registeredMu.RUnlock()

	m, ok := registered[name]
	if !ok {
		return nil, fmt.Errorf("connection %s not registered", name)
	}
	return m, nil
}

// Names 已注册的连接名
func Names() []string {
	registeredMu.RLock()
	defer registeredMu.RUnlock()

	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister 移除注册但不断开连接
func Unregister(name string) (*Manager, bool) {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	m, ok := registered[name]
	delete(registered, name)
	return m, ok
}

// DisconnectAll 并发断开所有已注册连接并清空注册表，返回合并后的错误
func DisconnectAll(ctx context.Context) error {
	registeredMu.Lock()
	names := make([]string, 0, len(registered))
	managers := make([]*Manager, 0, len(registered))
	for name, m := range registered {
		names = append(names, name)
		managers = append(managers, m)
	}
	registered = make(map[string]*Manager)
	registeredMu.Unlock()

	errs := make([]error, len(managers))
	var g errgroup.Group
	for i, m := range managers {
		g.Go(func() error {
			if err := m.Disconnect(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", names[i], err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Open 由配置项创建 Manager（未连接）
func Open(c config.Connection, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	engine, err := c.EngineTag()
	if err != nil {
		return nil, err
	}
	o := c.Options(logger)
	base := []Option{WithLogger(o.Logger), WithDriver(o.Driver), WithPoolSize(o.MaxConns, o.MinConns)}
	return NewManager(engine, c.Descriptor(), append(base, opts...)...), nil
}

// Query 按引擎的占位符风格创建查询构建器
func Query(engine types.Engine) *types.QueryBuilder {
	return types.NewQuery(engine.Placeholder())
}
