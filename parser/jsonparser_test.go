package parser_test

import (
	"testing"

	"github.com/Kaguya154/dbbridge/parser"
	"github.com/Kaguya154/dbbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsToJSON_KeepsColumnOrder(t *testing.T) {
	rows := types.NewRows([]string{"name", "id"}, []types.Row{
		{"id": int64(1), "name": "Tom"},
		{"id": int64(2), "name": nil},
	})

	out, err := parser.RowsToJSON(rows)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Tom","id":1},{"name":null,"id":2}]`, string(out))
}

func TestRowsToJSON_Empty(t *testing.T) {
	out, err := parser.RowsToJSON(types.NewRows([]string{"id"}, nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	out, err = parser.RowsToJSON(types.NewResult(1, 7))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestResultToJSON(t *testing.T) {
	out, err := parser.ResultToJSON(types.NewResult(2, 9))
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows_affected":2,"last_insert_id":9}`, string(out))
}
