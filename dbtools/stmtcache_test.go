package dbtools_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Kaguya154/dbbridge/dbtools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCache(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	prep := mock.ExpectPrepare("SELECT * FROM users WHERE id = ?")
	prep.ExpectQuery().WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	prep.ExpectQuery().WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	prep.WillBeClosed()

	cache := dbtools.NewStmtCache(conn, 0)

	for _, id := range []int{1, 2} {
		stmt, err := cache.Get(ctx, "SELECT * FROM users WHERE id = ?")
		require.NoError(t, err, "预编译失败")
		rows, err := stmt.QueryContext(ctx, id)
		require.NoError(t, err, "查询失败")
		require.True(t, rows.Next())
		require.NoError(t, rows.Close())
	}
	assert.Equal(t, 1, cache.Len(), "同一语句只预编译一次")

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStmtCache_PrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectPrepare("SELEC broken").WillReturnError(assert.AnError)

	cache := dbtools.NewStmtCache(conn, 0)
	_, err = cache.Get(ctx, "SELEC broken")
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, cache.Len(), "失败的语句不缓存")
}

func TestStmtCache_EvictsLeastRecentlyUsed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	const (
		q1 = "SELECT ? + 1"
		q2 = "SELECT ? + 2"
		q3 = "SELECT ? + 3"
	)
	mock.ExpectPrepare(q1).WillBeClosed()
	mock.ExpectPrepare(q2).WillBeClosed()
	mock.ExpectPrepare(q3).WillBeClosed()
	mock.ExpectPrepare(q2).WillBeClosed()

	cache := dbtools.NewStmtCache(conn, 2)
	assert.Equal(t, 2, cache.Cap())

	for _, q := range []string{q1, q2, q1, q3} {
		_, err := cache.Get(ctx, q)
		require.NoError(t, err, q)
	}
	assert.Equal(t, 2, cache.Len(), "q2 最久未用，被淘汰")

	// q2 重新预编译，淘汰 q1
	_, err = cache.Get(ctx, q2)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStmtCache_DefaultSize(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, dbtools.DefaultStmtCacheSize, dbtools.NewStmtCache(conn, 0).Cap())
	assert.Equal(t, dbtools.DefaultStmtCacheSize, dbtools.NewStmtCache(conn, -1).Cap())
}
