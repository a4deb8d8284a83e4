package types

import "strconv"

// Next 移动到下一行，返回是否有数据
func (r *Rows) Next() bool {
	if r.pos+1 < len(r.data) {
		r.pos++
		return true
	}
	return false
}

// Reset 游标回到首行之前
func (r *Rows) Reset() {
	r.pos = -1
}

// Get 原始取值
func (r *Rows) Get(col string) any {
	if r.pos < 0 || r.pos >= len(r.data) {
		return nil
	}
	return r.data[r.pos][col]
}

// GetString 取字符串
func (r *Rows) GetString(col string) string {
	switch v := r.Get(col).(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// GetInt 取整数
func (r *Rows) GetInt(col string) int {
	switch v := r.Get(col).(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	}
	return 0
}

// All 返回所有行
func (r *Rows) All() []Row {
	return r.data
}

// Count 返回行数
func (r *Rows) Count() int {
	return len(r.data)
}

// Columns 返回结果列，顺序与查询一致
func (r *Rows) Columns() []string {
	return r.columns
}

// RowsAffected 写操作影响的行数
func (r *Rows) RowsAffected() int64 {
	return r.rowsAffected
}

// LastInsertID 写操作最后插入的 ID，驱动不支持时为 0
func (r *Rows) LastInsertID() int64 {
	return r.lastInsertID
}

// SetRowsAffected 供驱动在读取完结果后回填
func (r *Rows) SetRowsAffected(n int64) {
	r.rowsAffected = n
}
