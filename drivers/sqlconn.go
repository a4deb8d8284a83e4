package drivers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/Kaguya154/dbbridge/dbtools"
	"github.com/Kaguya154/dbbridge/parser"
	"github.com/Kaguya154/dbbridge/types"
)

// Execer 可执行 SQL 的对象：*sql.DB、*sql.Conn、*sql.Tx
type Execer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Conn 固定在单个物理连接上的执行器，SQLite 与 MySQL 适配器共用
type Conn struct {
	db    *sql.DB
	conn  *sql.Conn
	stmts *dbtools.StmtCache
	log   *slog.Logger
}

// Pin 从 db 取出一个连接并固定下来，失败时关闭 db
func Pin(ctx context.Context, db *sql.DB, log *slog.Logger) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return &Conn{db: db, conn: conn, stmts: dbtools.NewStmtCache(conn, dbtools.DefaultStmtCacheSize), log: log}, nil
}

// Exec 执行语句；带参数的语句走预编译缓存
func (c *Conn) Exec(ctx context.Context, query string, params []any) (*types.Rows, error) {
	c.log.Debug("executing query", "sql", query, "params", len(params))
	if len(params) == 0 {
		return Run(ctx, c.conn, query, nil)
	}
	stmt, err := c.stmts.Get(ctx, query)
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	return Run(ctx, stmtExecer{stmt}, query, params)
}

// CachedStatements 当前缓存的预编译语句数
func (c *Conn) CachedStatements() int {
	return c.stmts.Len()
}

// Close 依次释放预编译语句、连接和连接池
func (c *Conn) Close() error {
	return errors.Join(c.stmts.Close(), c.conn.Close(), c.db.Close())
}

// Run 在 e 上执行一条语句：已知的写语句走 ExecContext 得到影响行数，其余走 QueryContext 读取结果行
func Run(ctx context.Context, e Execer, query string, params []any) (*types.Rows, error) {
	if parser.ReturnsRows(query) {
		rows, err := e.QueryContext(ctx, query, params...)
		if err != nil {
			return nil, types.Wrap(types.ErrQueryFailed, err)
		}
		return ScanRows(rows)
	}

	res, err := e.ExecContext(ctx, query, params...)
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	// 部分驱动（lib/pq）不支持 LastInsertId，此时记为 0
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return types.NewResult(affected, lastID), nil
}

// ScanRows 读取全部结果行并关闭 rows
func ScanRows(rows *sql.Rows) (*types.Rows, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	// 经 QueryContext 执行但不产生结果集的语句
	if len(columns) == 0 {
		if err := rows.Err(); err != nil {
			return nil, types.Wrap(types.ErrQueryFailed, err)
		}
		return types.NewResult(0, 0), nil
	}
	binary := binaryColumns(rows, len(columns))

	result := []types.Row{}
	for rows.Next() {
		row := make([]any, len(columns))
		rowPtrs := make([]any, len(columns))
		for i := range row {
			rowPtrs[i] = &row[i]
		}
		if err := rows.Scan(rowPtrs...); err != nil {
			return nil, types.Wrap(types.ErrQueryFailed, err)
		}
		m := make(types.Row, len(columns))
		for i, col := range columns {
			v := row[i]
			if b, ok := v.([]byte); ok && !binary[i] {
				v = string(b)
			}
			m[col] = v
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	return types.NewRows(columns, result), nil
}

// binaryColumns 标记二进制列，这些列保留 []byte
func binaryColumns(rows *sql.Rows, n int) []bool {
	binary := make([]bool, n)
	cts, err := rows.ColumnTypes()
	if err != nil {
		return binary
	}
	for i, ct := range cts {
		if i >= n {
			break
		}
		name := strings.ToUpper(ct.DatabaseTypeName())
		binary[i] = strings.Contains(name, "BLOB") || strings.Contains(name, "BINARY") || name == "BYTEA"
	}
	return binary
}

// stmtExecer 让预编译语句满足 Execer，query 参数被忽略
type stmtExecer struct {
	stmt *sql.Stmt
}

func (s stmtExecer) QueryContext(ctx context.Context, _ string, args ...any) (*sql.Rows, error) {
	return s.stmt.QueryContext(ctx, args...)
}

func (s stmtExecer) ExecContext(ctx context.Context, _ string, args ...any) (sql.Result, error) {
	return s.stmt.ExecContext(ctx, args...)
}
