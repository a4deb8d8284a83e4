package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Kaguya154/dbbridge/types"
)

const (
	// DriverName jackc/pgx 连接池，默认
	DriverName = "pgx"
	// LibPQDriverName lib/pq，经 database/sql 连接池
	LibPQDriverName = "postgres"
)

// pool 连接池。每次调用自行获取并归还连接
type pool interface {
	// ping 获取一个连接后立即归还，用于检查可达性
	ping(ctx context.Context) error
	query(ctx context.Context, sql string, params []any) (*types.Rows, error)
	close() error
}

// Adapter PostgreSQL 适配器。连接池在构造时创建，查询可在不同连接上并发执行
type Adapter struct {
	driver string
	log    *slog.Logger

	mu        sync.RWMutex
	pool      pool
	connected bool
}

// New 创建连接池但不建立连接
func New(dsn types.DSN, opts types.Options) (*Adapter, error) {
	var (
		p      pool
		err    error
		driver = opts.Driver
	)
	switch driver {
	case "", DriverName:
		driver = DriverName
		p, err = newPgxPool(string(dsn), opts)
	case LibPQDriverName:
		p, err = newSQLPool(string(dsn), opts)
	default:
		return nil, fmt.Errorf("postgres: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return &Adapter{driver: driver, log: opts.Log(), pool: p}, nil
}

func (a *Adapter) Engine() types.Engine {
	return types.EnginePostgres
}

// DriverName 实际使用的驱动
func (a *Adapter) DriverName() string {
	return a.driver
}

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool == nil {
		return types.Wrap(types.ErrConnectionFailed, types.ErrAdapterClosed)
	}
	if a.connected {
		return nil
	}
	if err := a.pool.ping(ctx); err != nil {
		return types.Wrap(types.ErrConnectionFailed, err)
	}
	a.connected = true
	a.log.Info("connected to postgres database", "driver", a.driver)
	return nil
}

// Disconnect 关闭连接池，之后适配器不可再用。未连接时同样释放连接池并返回 nil
func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool == nil {
		return nil
	}
	err := a.pool.close()
	a.pool = nil
	wasConnected := a.connected
	a.connected = false
	if err != nil {
		return types.Wrap(types.ErrDisconnectFailed, err)
	}
	if wasConnected {
		a.log.Info("disconnected from postgres database", "driver", a.driver)
	}
	return nil
}

// ExecuteQuery 读锁下执行，Disconnect 会等待进行中的查询结束
func (a *Adapter) ExecuteQuery(ctx context.Context, sql string, params ...any) (*types.Rows, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.connected {
		return nil, types.ErrNotConnected
	}
	a.log.Debug("executing query", "sql", sql, "params", len(params))
	return a.pool.query(ctx, sql, params)
}
