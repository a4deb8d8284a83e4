package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Kaguya154/dbbridge/parser"
	"github.com/Kaguya154/dbbridge/types"
	"github.com/jedib0t/go-pretty/v6/table"
)

// render 按输出格式写出结果；无列的结果视为写操作
func render(w io.Writer, rows *types.Rows, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rows)
	case "", "table":
		return renderTable(w, rows)
	}
	return fmt.Errorf("output must be table or json, got %q", format)
}

func renderTable(w io.Writer, rows *types.Rows) error {
	cols := rows.Columns()
	if len(cols) == 0 {
		_, _ = fmt.Fprintf(w, "OK, %d rows affected (last insert id %d)\n", rows.RowsAffected(), rows.LastInsertID())
		return nil
	}
	if rows.Count() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range rows.All() {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(r[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rows.Count())
	return nil
}

func renderJSON(w io.Writer, rows *types.Rows) error {
	var (
		data []byte
		err  error
	)
	if len(rows.Columns()) == 0 {
		data, err = parser.ResultToJSON(rows)
	} else {
		data, err = parser.RowsToJSON(rows)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return fmt.Sprintf("\\x%x", val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return fmt.Sprint(v)
}

// parseArg 规范的十进制整数转为 int64，其余按字符串绑定
func parseArg(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	return s
}

func parseArgs(args []string) []any {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = parseArg(a)
	}
	return params
}
