package postgresql

import (
	"context"
	"database/sql"

	"github.com/Kaguya154/dbbridge/drivers"
	"github.com/Kaguya154/dbbridge/types"

	_ "github.com/lib/pq"
)

// openSQL 测试时替换为 sqlmock
var openSQL = sql.Open

type sqlPool struct {
	db *sql.DB
}

func newSQLPool(dsn string, opts types.Options) (*sqlPool, error) {
	db, err := openSQL(LibPQDriverName, dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(int(opts.MaxConns))
	}
	if opts.MinConns > 0 {
		db.SetMaxIdleConns(int(opts.MinConns))
	}
	return &sqlPool{db: db}, nil
}

func (p *sqlPool) ping(ctx context.Context) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PingContext(ctx)
}

func (p *sqlPool) query(ctx context.Context, query string, params []any) (*types.Rows, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, types.Wrap(types.ErrQueryFailed, err)
	}
	defer conn.Close()
	return drivers.Run(ctx, conn, query, params)
}

func (p *sqlPool) close() error {
	return p.db.Close()
}
