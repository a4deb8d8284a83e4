package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Kaguya154/dbbridge/drivers"
	"github.com/Kaguya154/dbbridge/types"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverName mattn/go-sqlite3（cgo），默认
	DriverName = "sqlite3"
	// PureGoDriverName modernc.org/sqlite
	PureGoDriverName = "sqlite"
)

// Adapter SQLite 适配器，所有语句经由同一个连接执行
type Adapter struct {
	path   string
	driver string
	log    *slog.Logger

	mu     sync.Mutex
	conn   *drivers.Conn
	closed bool
}

func New(dsn types.DSN, opts types.Options) (*Adapter, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}
	driver := opts.Driver
	switch driver {
	case "":
		driver = DriverName
	case DriverName, PureGoDriverName:
	default:
		return nil, fmt.Errorf("sqlite: unknown driver %q", driver)
	}
	return &Adapter{path: string(dsn), driver: driver, log: opts.Log()}, nil
}

func (a *Adapter) Engine() types.Engine {
	return types.EngineSQLite
}

// DriverName 实际使用的驱动
func (a *Adapter) DriverName() string {
	return a.driver
}

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return types.Wrap(types.ErrConnectionFailed, types.ErrAdapterClosed)
	}
	if a.conn != nil {
		return nil
	}

	db, err := sql.Open(a.driver, FormatDSN(a.path))
	if err != nil {
		return types.Wrap(types.ErrConnectionFailed, err)
	}
	// 单连接：:memory: 库只存在于这个连接上
	db.SetMaxOpenConns(1)
	conn, err := drivers.Pin(ctx, db, a.log)
	if err != nil {
		return types.Wrap(types.ErrConnectionFailed, err)
	}
	a.conn = conn
	a.log.Info("connected to sqlite database", "path", a.path, "driver", a.driver)
	return nil
}

// Disconnect 释放连接，之后适配器不可再用；未连接时直接返回 nil
func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	if err != nil {
		return types.Wrap(types.ErrDisconnectFailed, err)
	}
	a.log.Info("disconnected from sqlite database", "path", a.path)
	return nil
}

func (a *Adapter) ExecuteQuery(ctx context.Context, sql string, params ...any) (*types.Rows, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil, types.ErrNotConnected
	}
	return a.conn.Exec(ctx, sql, params)
}

// uriEscaper 转义 file: URI 中有特殊含义的字符，% 必须最先处理
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// FormatDSN 普通路径以读写模式打开（文件必须已存在）；:memory: 和 file: URI 原样使用
func FormatDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + uriEscaper.Replace(path) + "?mode=rw"
}
