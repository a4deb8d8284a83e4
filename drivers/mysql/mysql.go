package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
	"net"
	"sync"

	"github.com/Kaguya154/dbbridge/drivers"
	"github.com/Kaguya154/dbbridge/types"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverName  = "mysql"
	DefaultPort = "3306"
)

// openDB 测试时替换为 sqlmock
var openDB = sql.OpenDB

// Adapter MySQL 适配器，Connect 时建立单个物理连接，直到 Disconnect 前一直复用
type Adapter struct {
	cfg       *mysql.Config
	connector driver.Connector
	log       *slog.Logger

	mu     sync.Mutex
	conn   *drivers.Conn
	closed bool
}

func New(cfg types.MySQLConfig, opts types.Options) (*Adapter, error) {
	c := NewConfig(cfg)
	connector, err := mysql.NewConnector(c)
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: c, connector: connector, log: opts.Log()}, nil
}

// NewConfig 由连接记录生成驱动配置，host 未带端口时补 3306
func NewConfig(cfg types.MySQLConfig) *mysql.Config {
	c := mysql.NewConfig()
	c.Net = "tcp"
	c.Addr = hostPort(cfg.Host)
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.DBName = cfg.Database
	c.ParseTime = true
	return c
}

func hostPort(host string) string {
	if host == "" {
		host = "localhost"
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, DefaultPort)
}

func (a *Adapter) Engine() types.Engine {
	return types.EngineMySQL
}

// Config 返回驱动配置的副本
func (a *Adapter) Config() *mysql.Config {
	return a.cfg.Clone()
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

	db := openDB(a.connector)
	db.SetMaxOpenConns(1)
	conn, err := drivers.Pin(ctx, db, a.log)
	if err != nil {
		return types.Wrap(types.ErrConnectionFailed, err)
	}
	a.conn = conn
	a.log.Info("connected to mysql database", "addr", a.cfg.Addr, "database", a.cfg.DBName, "user", a.cfg.User)
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
	a.log.Info("disconnected from mysql database", "addr", a.cfg.Addr)
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
