// Package config 连接配置：YAML 文件、DBBRIDGE_ 环境变量与命令行参数
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Kaguya154/dbbridge/parser"
	"github.com/Kaguya154/dbbridge/types"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = "table"

	// AdHocConnection 由 --engine/--dsn 参数组成的连接名
	AdHocConnection = "cli"
)

type Config struct {
	Default     string                `koanf:"default"`
	Connections map[string]Connection `koanf:"connections"`
	Log         LogConfig             `koanf:"log"`
	Output      string                `koanf:"output"`
}

// Connection 单个命名连接
type Connection struct {
	Engine string `koanf:"engine"`
	// DSN SQLite 文件路径、PostgreSQL URI，或 MySQL 的 host:user:password:database
	DSN string `koanf:"dsn"`

	// MySQL 结构化字段，Host 非空时优先于 DSN
	Host     string `koanf:"host"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	Driver   string `koanf:"driver"`
	MaxConns int32  `koanf:"max_conns"`
	MinConns int32  `koanf:"min_conns"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Connection 按名称取连接；name 为空时使用 default，仅有一个连接时直接返回它
func (c *Config) Connection(name string) (Connection, error) {
	_, conn, err := c.Resolve(name)
	return conn, err
}

// Resolve 同 Connection，同时返回实际选中的连接名
func (c *Config) Resolve(name string) (string, Connection, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" && len(c.Connections) == 1 {
		for only, conn := range c.Connections {
			return only, conn, nil
		}
	}
	if name == "" {
		return "", Connection{}, errors.New("no connection selected (set default or pass --conn)")
	}
	conn, ok := c.Connections[name]
	if !ok {
		return "", Connection{}, fmt.Errorf("connection %q not found (available: %s)", name, strings.Join(c.Names(), ", "))
	}
	return name, conn, nil
}

// Names 已配置的连接名，按字母序
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Validate() error {
	var errs []error
	if c.Default != "" {
		if _, ok := c.Connections[c.Default]; !ok {
			errs = append(errs, fmt.Errorf("default connection %q is not configured", c.Default))
		}
	}
	for _, name := range c.Names() {
		if err := c.Connections[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("connection %q: %w", name, err))
		}
	}
	switch c.Output {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("output must be table or json, got %q", c.Output))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate 检查引擎与必填字段
func (c Connection) Validate() error {
	engine, err := types.ParseEngine(c.Engine)
	if err != nil {
		return err
	}
	switch engine {
	case types.EngineMySQL:
		if c.Host != "" {
			return nil
		}
		if c.DSN == "" {
			return errors.New("mysql requires host or dsn")
		}
		_, err := parser.ParseMySQLDescriptor(c.DSN)
		return err
	default:
		if c.DSN == "" {
			return fmt.Errorf("%s requires dsn", engine)
		}
	}
	return nil
}

// EngineTag 解析后的引擎
func (c Connection) EngineTag() (types.Engine, error) {
	return types.ParseEngine(c.Engine)
}

// Descriptor MySQL 配置了 Host 时返回结构化记录，其余情况返回 DSN
func (c Connection) Descriptor() types.Descriptor {
	if engine, _ := types.ParseEngine(c.Engine); engine == types.EngineMySQL && c.Host != "" {
		return types.MySQLConfig{Host: c.Host, User: c.User, Password: c.Password, Database: c.Database}
	}
	return types.DSN(c.DSN)
}

// Options 适配器构造参数
func (c Connection) Options(logger *slog.Logger) types.Options {
	return types.Options{Driver: c.Driver, MaxConns: c.MaxConns, MinConns: c.MinConns, Logger: logger}
}

// NewLogger 按 log.level / log.format 构造日志器
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format must be text or json, got %q", l.Format)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
