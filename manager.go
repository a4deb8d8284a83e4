package dbbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Kaguya154/dbbridge/drivers/mysql"
	"github.com/Kaguya154/dbbridge/drivers/postgresql"
	"github.com/Kaguya154/dbbridge/drivers/sqlite"
	"github.com/Kaguya154/dbbridge/parser"
	"github.com/Kaguya154/dbbridge/types"
)

// Factory 由引擎和连接描述构造适配器
type Factory func(engine types.Engine, desc types.Descriptor, opts types.Options) (types.Adapter, error)

// Manager 持有一个引擎的适配器，首次 Connect 时创建，之后一直复用
type Manager struct {
	engine  types.Engine
	desc    types.Descriptor
	opts    types.Options
	factory Factory

	mu        sync.Mutex
	adapter   types.Adapter
	connected bool
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.opts.Logger = logger }
}

// WithDriver 选择底层客户端：sqlite3 / sqlite，pgx / postgres
func WithDriver(name string) Option {
	return func(m *Manager) { m.opts.Driver = name }
}

// WithPoolSize PostgreSQL 连接池大小
func WithPoolSize(maxConns, minConns int32) Option {
	return func(m *Manager) {
		m.opts.MaxConns = maxConns
		m.opts.MinConns = minConns
	}
}

// WithFactory 替换适配器构造方式
func WithFactory(f Factory) Option {
	return func(m *Manager) { m.factory = f }
}

func NewManager(engine types.Engine, desc types.Descriptor, opts ...Option) *Manager {
	m := &Manager{engine: engine, desc: desc, factory: NewAdapter}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Engine() types.Engine {
	return m.engine
}

// Adapter 当前适配器，Connect 之前为 nil
func (m *Manager) Adapter() types.Adapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adapter
}

// Connect 首次调用时创建适配器并连接；已连接时为空操作
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.adapter == nil {
		a, err := m.factory(m.engine, m.desc, m.opts)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: %s factory returned no adapter", types.ErrAdapterCreationFailed, m.engine)
		}
		m.adapter = a
	}
	if m.connected {
		return nil
	}
	if err := m.adapter.Connect(ctx); err != nil {
		return err
	}
	m.connected = true
	return nil
}

// Disconnect 从未创建适配器时为空操作
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.adapter == nil {
		return nil
	}
	m.connected = false
	return m.adapter.Disconnect(ctx)
}

// ExecuteQuery 原样返回适配器的结果与错误
func (m *Manager) ExecuteQuery(ctx context.Context, sql string, params ...any) (*types.Rows, error) {
	a := m.Adapter()
	if a == nil {
		return nil, types.ErrNotConnected
	}
	return a.ExecuteQuery(ctx, sql, params...)
}

// Builder 使用本引擎占位符风格的查询构建器
func (m *Manager) Builder() *types.QueryBuilder {
	return types.NewQuery(m.engine.Placeholder())
}

// Run 构建并执行查询
func (m *Manager) Run(ctx context.Context, qb *types.QueryBuilder) (*types.Rows, error) {
	sql, params, err := qb.Build()
	if err != nil {
		return nil, err
	}
	return m.ExecuteQuery(ctx, sql, params...)
}

// NewAdapter 默认的适配器构造：引擎到实现的映射，MySQL 字符串描述按冒号拆分
func NewAdapter(engine types.Engine, desc types.Descriptor, opts types.Options) (types.Adapter, error) {
	switch engine {
	case types.EngineSQLite:
		dsn, ok := desc.(types.DSN)
		if !ok {
			return nil, descriptorError(engine, desc)
		}
		a, err := sqlite.New(dsn, opts)
		if err != nil {
			return nil, types.Wrap(types.ErrAdapterCreationFailed, err)
		}
		return a, nil

	case types.EngineMySQL:
		var cfg types.MySQLConfig
		switch d := desc.(type) {
		case types.MySQLConfig:
			cfg = d
		case types.DSN:
			parsed, err := parser.ParseMySQLDescriptor(string(d))
			if err != nil {
				return nil, types.Wrap(types.ErrAdapterCreationFailed, err)
			}
			cfg = parsed
		default:
			return nil, descriptorError(engine, desc)
		}
		a, err := mysql.New(cfg, opts)
		if err != nil {
			return nil, types.Wrap(types.ErrAdapterCreationFailed, err)
		}
		return a, nil

	case types.EnginePostgres:
		dsn, ok := desc.(types.DSN)
		if !ok {
			return nil, descriptorError(engine, desc)
		}
		a, err := postgresql.New(dsn, opts)
		if err != nil {
			return nil, types.Wrap(types.ErrAdapterCreationFailed, err)
		}
		return a, nil
	}
	return nil, &types.UnsupportedEngineError{Engine: engine, Available: types.Engines()}
}

func descriptorError(engine types.Engine, desc types.Descriptor) error {
	return fmt.Errorf("%w: %s does not accept descriptor %T", types.ErrAdapterCreationFailed, engine, desc)
}
