package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Kaguya154/dbbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input    string
		expected types.Engine
	}{
		{"sqlite", types.EngineSQLite},
		{"SQLite3", types.EngineSQLite},
		{"mysql", types.EngineMySQL},
		{"postgres", types.EnginePostgres},
		{"PostgreSQL", types.EnginePostgres},
		{" pg ", types.EnginePostgres},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := types.ParseEngine(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e)
			assert.True(t, e.Valid())
		})
	}

	_, err := types.ParseEngine("oracle")
	require.ErrorIs(t, err, types.ErrUnsupportedEngine)
	assert.Contains(t, err.Error(), `"oracle"`)
	assert.Contains(t, err.Error(), "sqlite, mysql, postgres")
}

func TestEnginePlaceholder(t *testing.T) {
	assert.Equal(t, types.PlaceholderQuestion, types.EngineSQLite.Placeholder())
	assert.Equal(t, types.PlaceholderQuestion, types.EngineMySQL.Placeholder())
	assert.Equal(t, types.PlaceholderDollar, types.EnginePostgres.Placeholder())
	assert.False(t, types.Engine("duckdb").Valid())

	assert.Equal(t, "?", types.PlaceholderQuestion.Format(3))
	assert.Equal(t, "$3", types.PlaceholderDollar.Format(3))
}

func TestParseJoinTypeAndAggFunc(t *testing.T) {
	j, ok := types.ParseJoinType("left")
	assert.True(t, ok)
	assert.Equal(t, types.JoinLeft, j)
	_, ok = types.ParseJoinType("cross")
	assert.False(t, ok)

	f, ok := types.ParseAggFunc("avg")
	assert.True(t, ok)
	assert.Equal(t, types.AggAvg, f)
	_, ok = types.ParseAggFunc("median")
	assert.False(t, ok)
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := types.Wrap(types.ErrQueryFailed, cause)

	assert.ErrorIs(t, err, types.ErrQueryFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "query failed: disk I/O error", err.Error())
	assert.NoError(t, types.Wrap(types.ErrQueryFailed, nil))

	wrapped := fmt.Errorf("outer: %w", &types.UnsupportedEngineError{Engine: "x", Available: types.Engines()})
	assert.ErrorIs(t, wrapped, types.ErrUnsupportedEngine)
}
