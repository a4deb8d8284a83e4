package parser

import (
	"bytes"
	"encoding/json"

	"github.com/Kaguya154/dbbridge/types"
)

// RowsToJSON 将结果行编码为 JSON 数组，列顺序与查询结果一致
func RowsToJSON(rows *types.Rows) ([]byte, error) {
	cols := rows.Columns()
	if len(cols) == 0 {
		return json.Marshal(rows.All())
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range cols {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(row[col])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// ResultToJSON 写操作结果的 JSON 表示
func ResultToJSON(rows *types.Rows) ([]byte, error) {
	return json.Marshal(map[string]int64{
		"rows_affected":  rows.RowsAffected(),
		"last_insert_id": rows.LastInsertID(),
	})
}
