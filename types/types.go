package types

import (
	"log/slog"
	"strconv"
	"strings"
)

// Engine 数据库引擎标识，决定适配器实现与占位符风格
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EngineMySQL    Engine = "mysql"
	EnginePostgres Engine = "postgres"
)

// Engines 返回全部受支持的引擎
func Engines() []Engine {
	return []Engine{EngineSQLite, EngineMySQL, EnginePostgres}
}

// ParseEngine 解析引擎名称，不区分大小写
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return EngineSQLite, nil
	case "mysql":
		return EngineMySQL, nil
	case "postgres", "postgresql", "pg":
		return EnginePostgres, nil
	}
	return Engine(name), &UnsupportedEngineError{Engine: Engine(name), Available: Engines()}
}

func (e Engine) Valid() bool {
	switch e {
	case EngineSQLite, EngineMySQL, EnginePostgres:
		return true
	}
	return false
}

// Placeholder 返回该引擎使用的占位符风格
func (e Engine) Placeholder() PlaceholderStyle {
	if e == EnginePostgres {
		return PlaceholderDollar
	}
	return PlaceholderQuestion
}

func (e Engine) String() string {
	return string(e)
}

// PlaceholderStyle 绑定参数的占位符写法
type PlaceholderStyle int

const (
	// PlaceholderQuestion 使用 ?（MySQL、SQLite）
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar 使用 $1、$2 ...（PostgreSQL）
	PlaceholderDollar
)

// Format 返回第 n 个参数（从 1 开始）的占位符
func (s PlaceholderStyle) Format(n int) string {
	if s == PlaceholderDollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s PlaceholderStyle) String() string {
	if s == PlaceholderDollar {
		return "dollar"
	}
	return "question"
}

// Descriptor 连接描述：DSN 字符串或 MySQLConfig 结构
type Descriptor interface {
	descriptor()
}

// DSN 文件路径或连接 URI
type DSN string

func (DSN) descriptor() {}

// MySQLConfig MySQL 结构化连接信息
type MySQLConfig struct {
	Host     string
	User     string
	Password string
	Database string
}

func (MySQLConfig) descriptor() {}

// Options 适配器构造参数
type Options struct {
	// Driver 底层客户端：SQLite 为 sqlite3 / sqlite，PostgreSQL 为 pgx / postgres
	Driver string
	// MaxConns、MinConns 仅对 PostgreSQL 连接池生效
	MaxConns int32
	MinConns int32
	Logger   *slog.Logger
}

// Log 返回日志器，未设置时丢弃输出
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// JoinType 连接类型
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
)

// ParseJoinType 解析连接类型，不区分大小写
func ParseJoinType(s string) (JoinType, bool) {
	switch t := JoinType(strings.ToUpper(strings.TrimSpace(s))); t {
	case JoinInner, JoinLeft, JoinRight:
		return t, true
	}
	return "", false
}

// AggFunc 聚合函数
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
	AggAvg   AggFunc = "AVG"
	AggMin   AggFunc = "MIN"
	AggMax   AggFunc = "MAX"
)

// ParseAggFunc 解析聚合函数名，不区分大小写
func ParseAggFunc(s string) (AggFunc, bool) {
	switch f := AggFunc(strings.ToUpper(strings.TrimSpace(s))); f {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return f, true
	}
	return "", false
}

type Join struct {
	Type  JoinType
	Table string
	On    string
}

type Aggregation struct {
	Func  AggFunc
	Field string
}

// QueryOptions QueryBuilder 内部累积的查询状态
type QueryOptions struct {
	Table        string
	Fields       []string
	Conditions   []string
	Joins        []Join
	Aggregations []Aggregation
}

// QueryBuilder 按方言构建参数化 SELECT 语句
type QueryBuilder struct {
	style  PlaceholderStyle
	opts   QueryOptions
	params []any
}

// Row 一行结果：列名 -> 值
type Row = map[string]any

type Rows struct {
	columns      []string
	data         []Row
	pos          int
	rowsAffected int64
	lastInsertID int64
}

func NewRows(columns []string, data []Row) *Rows {
	if data == nil {
		data = []Row{}
	}
	return &Rows{columns: columns, data: data, pos: -1}
}

// NewResult 创建写操作的结果描述（无结果行）
func NewResult(rowsAffected, lastInsertID int64) *Rows {
	return &Rows{data: []Row{}, pos: -1, rowsAffected: rowsAffected, lastInsertID: lastInsertID}
}
