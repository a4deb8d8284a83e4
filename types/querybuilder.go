package types

import (
	"strings"
)

// 条件片段中的参数标记
const marker = "?"

// NewQuery 创建并返回一个新的 QueryBuilder 实例，style 决定占位符写法。
func NewQuery(style PlaceholderStyle) *QueryBuilder {
	return &QueryBuilder{style: style}
}

// Table 设置目标表（必填）。
func (b *QueryBuilder) Table(name string) *QueryBuilder {
	b.opts.Table = name
	return b
}

// Select 设置查询字段，未调用或为空时使用 *。
func (b *QueryBuilder) Select(fields ...string) *QueryBuilder {
	b.opts.Fields = append([]string(nil), fields...)
	return b
}

// Where 添加带一个绑定值的条件。
// 片段中第一个 ? 被替换为当前方言的占位符，value 追加到参数列表。
// 每个条件只支持一个绑定值，多个值请拆成多次 Where。
func (b *QueryBuilder) Where(condition string, value any) *QueryBuilder {
	ph := b.style.Format(len(b.params) + 1)
	b.opts.Conditions = append(b.opts.Conditions, strings.Replace(condition, marker, ph, 1))
	b.params = append(b.params, value)
	return b
}

// WhereRaw 添加原样输出的条件，不做占位符替换，也不占用参数位。
func (b *QueryBuilder) WhereRaw(condition string) *QueryBuilder {
	b.opts.Conditions = append(b.opts.Conditions, condition)
	return b
}

// Join 添加连接，on 不做参数化。
func (b *QueryBuilder) Join(typ JoinType, table, on string) *QueryBuilder {
	b.opts.Joins = append(b.opts.Joins, Join{Type: typ, Table: table, On: on})
	return b
}

// Aggregate 添加聚合。存在聚合时 SELECT 列表只包含聚合项。
func (b *QueryBuilder) Aggregate(fn AggFunc, field string) *QueryBuilder {
	b.opts.Aggregations = append(b.opts.Aggregations, Aggregation{Func: fn, Field: field})
	return b
}

// Style 返回占位符风格
func (b *QueryBuilder) Style() PlaceholderStyle {
	return b.style
}

// Options 返回当前累积状态的副本
func (b *QueryBuilder) Options() QueryOptions {
	return QueryOptions{
		Table:        b.opts.Table,
		Fields:       append([]string(nil), b.opts.Fields...),
		Conditions:   append([]string(nil), b.opts.Conditions...),
		Joins:        append([]Join(nil), b.opts.Joins...),
		Aggregations: append([]Aggregation(nil), b.opts.Aggregations...),
	}
}

// Build 生成 SQL 与参数列表。
// 子句顺序固定：SELECT ... FROM ...、按添加顺序的 JOIN、WHERE 条件以 AND 连接。
// 不清空状态，重复调用结果相同；返回的参数切片为副本。
func (b *QueryBuilder) Build() (string, []any, error) {
	if b.opts.Table == "" {
		return "", nil, ErrMissingTable
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.projection())
	sb.WriteString(" FROM ")
	sb.WriteString(b.opts.Table)

	for _, j := range b.opts.Joins {
		sb.WriteByte(' ')
		sb.WriteString(string(j.Type))
		sb.WriteString(" JOIN ")
		sb.WriteString(j.Table)
		sb.WriteString(" ON ")
		sb.WriteString(j.On)
	}

	if len(b.opts.Conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.opts.Conditions, " AND "))
	}

	params := make([]any, len(b.params))
	copy(params, b.params)
	return sb.String(), params, nil
}

func (b *QueryBuilder) projection() string {
	if len(b.opts.Aggregations) > 0 {
		parts := make([]string, len(b.opts.Aggregations))
		for i, agg := range b.opts.Aggregations {
			parts[i] = string(agg.Func) + "(" + agg.Field + ")"
		}
		return strings.Join(parts, ", ")
	}
	if len(b.opts.Fields) == 0 {
		return "*"
	}
	return strings.Join(b.opts.Fields, ", ")
}
