package postgresql

import (
	"context"

	"github.com/Kaguya154/dbbridge/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool struct {
	pool *pgxpool.Pool
}

// newPgxPool 解析 DSN 并创建连接池，首次获取连接时才拨号
func newPgxPool(dsn string, opts types.Options) (*pgxPool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	p, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &pgxPool{pool: p}, nil
}

func (p *pgxPool) ping(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return conn.Ping(ctx)
}

func (p *pgxPool) query(ctx context.Context, sql string, params []any) (*types.Rows, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, queryArgs(params)...)
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := []types.Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, types.Wrap(types.ErrQueryFailed, err)
		}
		m := make(types.Row, len(columns))
		for i, col := range columns {
			m[col] = values[i]
		}
		result = append(result, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}

	// 无结果列的语句（INSERT/UPDATE/DDL）只返回影响行数
	affected := rows.CommandTag().RowsAffected()
	if len(columns) == 0 {
		return types.NewResult(affected, 0), nil
	}
	out := types.NewRows(columns, result)
	out.SetRowsAffected(affected)
	return out, nil
}

func (p *pgxPool) close() error {
	p.pool.Close()
	return nil
}

// queryArgs 无参数的语句走简单协议，可以一次执行多条以分号分隔的语句，
// 结果取第一条语句的输出。有参数时使用默认的扩展协议
func queryArgs(params []any) []any {
	if len(params) == 0 {
		return []any{pgx.QueryExecModeSimpleProtocol}
	}
	return params
}
